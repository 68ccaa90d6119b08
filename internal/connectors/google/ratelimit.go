package google

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ServiceType identifies a class of Google API calls for rate limiting purposes.
type ServiceType string

const (
	// ServiceDrive covers Drive metadata calls (list, create folder, get).
	ServiceDrive ServiceType = "drive"
	// ServiceDriveUpload covers Drive media uploads.
	ServiceDriveUpload ServiceType = "drive-upload"
)

// defaultBackoff applies when a 429 carries no Retry-After header.
const defaultBackoff = 30 * time.Second

// RateLimitConfig holds rate limiting configuration for a service.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
}

// DefaultRateLimits stays well below Drive's 10 requests/second/user.
var DefaultRateLimits = map[ServiceType]RateLimitConfig{
	ServiceDrive:       {RequestsPerSecond: 8.0, BurstSize: 10},
	ServiceDriveUpload: {RequestsPerSecond: 3.0, BurstSize: 3},
}

// RateLimiter provides rate limiting for Google API requests.
// It uses a token bucket with a backoff window opened by 429 responses.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	now     func() time.Time
}

// NewRateLimiter creates a new rate limiter for the specified service.
func NewRateLimiter(service ServiceType) *RateLimiter {
	cfg, ok := DefaultRateLimits[service]
	if !ok {
		cfg = DefaultRateLimits[ServiceDrive]
	}
	return NewRateLimiterWithConfig(cfg)
}

// NewRateLimiterWithConfig creates a rate limiter with custom configuration.
func NewRateLimiterWithConfig(cfg RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
		now:     time.Now,
	}
}

// Wait blocks until a request can be made without exceeding the rate limit.
// It also respects any backoff period set by RecordRateLimitError.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if wait := r.backoff(); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return r.limiter.Wait(ctx)
}

// RecordRateLimitError opens a backoff window after a 429 response.
func (r *RateLimiter) RecordRateLimitError(retryAfterSeconds int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	backoff := defaultBackoff
	if retryAfterSeconds > 0 {
		backoff = time.Duration(retryAfterSeconds) * time.Second
	}
	r.retryAt = r.now().Add(backoff)
}

// Observe inspects the result of a call and records rate limit errors.
// It returns err unchanged so it can wrap a return statement.
func (r *RateLimiter) Observe(err error) error {
	if err != nil && IsRateLimited(err) {
		r.RecordRateLimitError(RetryAfter(err))
	}
	return err
}

// Allow checks if a request can be made immediately without blocking.
func (r *RateLimiter) Allow() bool {
	if r.backoff() > 0 {
		return false
	}
	return r.limiter.Allow()
}

func (r *RateLimiter) backoff() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.retryAt.Sub(r.now())
}
