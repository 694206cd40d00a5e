package models

import (
	"fmt"
	"strings"
	"time"
)

// EndpointClass categorizes endpoints for differentiated rate limiting.
type EndpointClass string

const (
	// ClassRead: registration reads, each one fans out to every source
	ClassRead EndpointClass = "read"
	// ClassWrite: status mutations forwarded upstream
	ClassWrite EndpointClass = "write"
)

// IsValid checks if the endpoint class is one of the supported enum values.
func (c EndpointClass) IsValid() bool {
	return c == ClassRead || c == ClassWrite
}

// Limit is a request budget for one window.
type Limit struct {
	Requests int
	Window   time.Duration
}

// RateLimitResult represents the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

// keySegment replaces the key delimiter so an id such as "42:write" cannot
// address another bucket.
func keySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

// NewUserRateLimitKey builds the bucket key for a user on an endpoint class.
func NewUserRateLimitKey(userID string, class EndpointClass) string {
	return fmt.Sprintf("rl:user:%s:%s", keySegment(userID), class)
}

// NewIPRateLimitKey builds the bucket key for a client IP on an endpoint class.
func NewIPRateLimitKey(ip string, class EndpointClass) string {
	return fmt.Sprintf("rl:ip:%s:%s", keySegment(ip), class)
}

// RetryAfterSeconds rounds the wait until resetAt up to whole seconds.
func RetryAfterSeconds(now, resetAt time.Time) int {
	d := resetAt.Sub(now)
	if d <= 0 {
		return 1
	}
	secs := int(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return secs
}
