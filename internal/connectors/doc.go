// Package connectors groups the clients of external provider APIs.
//
//   - qonto: the banking API, an implementation of driven.AttachmentSource
//   - google: Drive service construction, error mapping and rate limiting
//     shared by the Google Drive storage backend
package connectors
