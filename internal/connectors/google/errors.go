package google

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"google.golang.org/api/googleapi"
)

// Common Google API errors.
var (
	// ErrUnauthorized indicates invalid or expired credentials.
	ErrUnauthorized = errors.New("google: unauthorised (invalid credentials)")

	// ErrForbidden indicates insufficient permissions, e.g. the folder
	// is not shared with the service account.
	ErrForbidden = errors.New("google: forbidden (insufficient permissions)")

	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = errors.New("google: resource not found")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("google: rate limit exceeded")

	// ErrQuotaExceeded indicates the storage or daily API quota was exceeded.
	ErrQuotaExceeded = errors.New("google: quota exceeded")
)

// quotaReasons are the error reasons Drive uses for exhausted quotas.
var quotaReasons = map[string]bool{
	"storageQuotaExceeded": true,
	"dailyLimitExceeded":   true,
	"quotaExceeded":        true,
}

// IsUnauthorized returns true if the error indicates invalid credentials.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) || hasCode(err, http.StatusUnauthorized)
}

// IsForbidden returns true if the error indicates insufficient permissions.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden) || hasCode(err, http.StatusForbidden)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || hasCode(err, http.StatusNotFound)
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited) || hasCode(err, http.StatusTooManyRequests)
}

// RetryAfter extracts the Retry-After header of a rate-limited response in seconds.
// Returns 0 when the header is absent.
func RetryAfter(err error) int {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Header == nil {
		return 0
	}
	secs, convErr := strconv.Atoi(gerr.Header.Get("Retry-After"))
	if convErr != nil || secs < 0 {
		return 0
	}
	return secs
}

// WrapError converts a Google API error to a more specific error type.
// The original message is kept so users see what Drive reported.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	switch gerr.Code {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, gerr.Message)
	case http.StatusForbidden:
		if isQuota(gerr) {
			return fmt.Errorf("%w: %s", ErrQuotaExceeded, gerr.Message)
		}
		return fmt.Errorf("%w: %s", ErrForbidden, gerr.Message)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, gerr.Message)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, gerr.Message)
	default:
		return err
	}
}

func hasCode(err error, code int) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == code
}

func isQuota(gerr *googleapi.Error) bool {
	for _, item := range gerr.Errors {
		if quotaReasons[item.Reason] {
			return true
		}
	}
	return false
}
