// Package qonto provides the attachment source backed by the Qonto v2
// third-party API.
//
// Transactions settled in a period are listed page by page; for each one
// the attachments endpoint is queried and every attachment that has a
// pre-signed download URL becomes an AttachmentRecord. Amounts are parsed
// as decimals and stored in minor units.
//
// Requests are rate limited and transient failures (5xx, 429, network
// errors) are retried with exponential backoff.
package qonto
