package models

import "time"

// Scope names what a bucket is keyed on.
type Scope string

const (
	ScopeUser Scope = "user"
	ScopeIP   Scope = "ip"
)

// ExceededResponse is the 429 body. Error is "user_rate_limit_exceeded" for
// per-user buckets and "rate_limit_exceeded" for per-IP ones.
type ExceededResponse struct {
	Error      string        `json:"error"`
	Message    string        `json:"message"`
	Scope      Scope         `json:"scope"`
	Class      EndpointClass `json:"class"`
	Limit      int           `json:"limit"`
	Remaining  int           `json:"remaining"`
	ResetAt    time.Time     `json:"reset_at"`
	RetryAfter int           `json:"retry_after"`
}

// NewExceededResponse builds the 429 body for a denied check.
func NewExceededResponse(scope Scope, class EndpointClass, result *RateLimitResult) *ExceededResponse {
	resp := &ExceededResponse{
		Error:      "rate_limit_exceeded",
		Message:    "too many requests from this address, retry later",
		Scope:      scope,
		Class:      class,
		Limit:      result.Limit,
		Remaining:  result.Remaining,
		ResetAt:    result.ResetAt,
		RetryAfter: result.RetryAfter,
	}
	if scope == ScopeUser {
		resp.Error = "user_rate_limit_exceeded"
		resp.Message = "registration request quota used up, retry later"
	}
	return resp
}
