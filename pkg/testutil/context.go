package testutil

import (
	"net/http"

	"regsync/pkg/requestcontext"
)

// WithUserID marks the request as authenticated for userID, the way
// RequireAuth would. A blank userID leaves the request unauthenticated.
func WithUserID(req *http.Request, userID string) *http.Request {
	if userID == "" {
		return req
	}
	return req.WithContext(requestcontext.WithUserID(req.Context(), userID))
}

// WithRequestID attaches a correlation id to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
