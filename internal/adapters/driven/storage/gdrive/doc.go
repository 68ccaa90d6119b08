// Package gdrive implements the storage backend on Google Drive.
//
// Each period is a sub-folder (YYYY-MM) of a configured parent folder,
// which may live in a shared drive. The parent must be shared with the
// service account whose key the CLI is configured with.
package gdrive
