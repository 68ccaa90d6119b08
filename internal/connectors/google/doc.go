// Package google provides the Google Drive plumbing used by the gdrive
// storage backend.
//
// It contains:
//   - Service factories building an authenticated Drive v3 client from a
//     service account key file
//   - Error mapping for common Drive API failures (401, 403, 404, 429)
//   - A rate limiter that keeps requests under the per-user quota
//
// # Usage
//
//	svc, err := google.NewDriveServiceFromFile(ctx, "/path/to/key.json")
//	limiter := google.NewRateLimiter(google.ServiceDrive)
//
// The service account must be granted access to the target folder (or be a
// member of the shared drive holding it).
package google
