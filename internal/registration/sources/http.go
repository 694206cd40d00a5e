package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"regsync/internal/registration/models"
)

const (
	userIDPlaceholder = "{userID}"
	maxBodyBytes      = 8 << 20
	defaultTimeout    = 10 * time.Second
)

// DefaultPaths maps each source kind to its user-registrations endpoint.
var DefaultPaths = map[models.SourceKind]string{
	models.SourcePrivateLimited: "/private-limited/user-registrations/{userID}",
	models.SourceProprietorship: "/proprietorship/user-registrations/{userID}",
	models.SourceStartupIndia:   "/startup-india/user-registrations/{userID}",
	models.SourceGST:            "/gst/user-registrations/{userID}",
	models.SourceServices:       "/admin/user-services/{userID}",
}

// HTTPSource fetches registrations from a REST endpoint.
type HTTPSource struct {
	kind      models.SourceKind
	baseURL   string
	path      string
	authToken string
	client    *http.Client
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithPath overrides the endpoint path. The path must contain {userID}.
func WithPath(path string) HTTPOption {
	return func(s *HTTPSource) {
		if path != "" {
			s.path = path
		}
	}
}

// WithAuthToken sends the token as a bearer Authorization header.
func WithAuthToken(token string) HTTPOption {
	return func(s *HTTPSource) {
		s.authToken = token
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		if client != nil {
			s.client = client
		}
	}
}

// WithTimeout sets the client timeout for a single fetch.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(s *HTTPSource) {
		if timeout > 0 {
			s.client = &http.Client{Timeout: timeout, Transport: s.client.Transport}
		}
	}
}

// NewHTTPSource builds a source for kind rooted at baseURL.
func NewHTTPSource(kind models.SourceKind, baseURL string, opts ...HTTPOption) (*HTTPSource, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, kind)
	}
	if _, err := url.Parse(baseURL); err != nil || baseURL == "" {
		return nil, fmt.Errorf("invalid base url for %s: %q", kind, baseURL)
	}

	s := &HTTPSource{
		kind:    kind,
		baseURL: strings.TrimRight(baseURL, "/"),
		path:    DefaultPaths[kind],
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	if !strings.Contains(s.path, userIDPlaceholder) {
		return nil, fmt.Errorf("path for %s must contain %s", kind, userIDPlaceholder)
	}
	return s, nil
}

func (s *HTTPSource) Kind() models.SourceKind {
	return s.kind
}

// URL returns the endpoint for a user.
func (s *HTTPSource) URL(userID string) string {
	return s.baseURL + strings.ReplaceAll(s.path, userIDPlaceholder, url.PathEscape(userID))
}

// Fetch performs the GET and returns the raw body of a 2xx response.
func (s *HTTPSource) Fetch(ctx context.Context, userID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL(userID), nil)
	if err != nil {
		return nil, NewSourceError(ErrorInternal, s.kind, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.authToken)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || Category(err) == ErrorTimeout {
			return nil, NewSourceError(ErrorTimeout, s.kind, "request timed out", err)
		}
		return nil, NewSourceError(ErrorTransport, s.kind, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, NewSourceError(ErrorBadData, s.kind, "read body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := NewSourceError(ErrorBadStatus, s.kind, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
		se.StatusCode = resp.StatusCode
		return nil, se
	}
	return body, nil
}
