package giterror

import (
	"errors"
	"fmt"
	"testing"

	harvesterrors "github.com/sirseerhq/sirseer-harvest/internal/errors"
)

func TestInspector_Classification(t *testing.T) {
	inspector := NewInspector()

	tests := []struct {
		name      string
		err       error
		auth      bool
		notFound  bool
		rateLimit bool
		schema    bool
		network   bool
	}{
		{
			name: "nil error",
			err:  nil,
		},
		{
			name: "bad credentials",
			err:  errors.New("non-200 OK status code: 401 Unauthorized body: bad credentials"),
			auth: true,
		},
		{
			name:     "repository missing",
			err:      errors.New("Could not resolve to a Repository with the name 'octocat/missing'"),
			notFound: true,
		},
		{
			name:      "primary rate limit",
			err:       errors.New("API rate limit exceeded for user"),
			rateLimit: true,
		},
		{
			name:      "secondary rate limit",
			err:       errors.New("You have exceeded a secondary rate limit"),
			rateLimit: true,
		},
		{
			name:      "http 429",
			err:       errors.New("non-200 OK status code: 429 Too Many Requests"),
			rateLimit: true,
		},
		{
			name:    "connection refused",
			err:     errors.New("Post \"https://api.github.com/graphql\": dial tcp: connection refused"),
			network: true,
		},
		{
			name:    "timeout",
			err:     errors.New("net/http: request canceled (Client.Timeout exceeded)"),
			network: true,
		},
		{
			name:    "bad gateway",
			err:     errors.New("non-200 OK status code: 502 Bad Gateway"),
			network: true,
		},
		{
			name:    "service unavailable",
			err:     errors.New("non-200 OK status code: 503 Service Unavailable"),
			network: true,
		},
		{
			name:   "truncated body",
			err:    errors.New("unexpected end of JSON input"),
			schema: true,
		},
		{
			name:   "wrapped schema sentinel",
			err:    fmt.Errorf("response missing rateLimit data: %w", harvesterrors.ErrBadSchema),
			schema: true,
		},
		{
			name: "wrapped auth sentinel",
			err:  fmt.Errorf("authentication failed: %w", harvesterrors.ErrInvalidToken),
			auth: true,
		},
		{
			name:    "wrapped network sentinel",
			err:     fmt.Errorf("network error: %w", harvesterrors.ErrNetworkFailure),
			network: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inspector.IsAuthError(tt.err); got != tt.auth {
				t.Errorf("IsAuthError = %v, want %v", got, tt.auth)
			}
			if got := inspector.IsNotFoundError(tt.err); got != tt.notFound {
				t.Errorf("IsNotFoundError = %v, want %v", got, tt.notFound)
			}
			if got := inspector.IsRateLimitError(tt.err); got != tt.rateLimit {
				t.Errorf("IsRateLimitError = %v, want %v", got, tt.rateLimit)
			}
			if got := inspector.IsSchemaError(tt.err); got != tt.schema {
				t.Errorf("IsSchemaError = %v, want %v", got, tt.schema)
			}
			if got := inspector.IsNetworkError(tt.err); got != tt.network {
				t.Errorf("IsNetworkError = %v, want %v", got, tt.network)
			}
		})
	}
}

func TestInspector_IsRetryable(t *testing.T) {
	inspector := NewInspector()

	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil", nil, false},
		{"network error", errors.New("dial tcp: connection refused"), true},
		{"server error", errors.New("non-200 OK status code: 503 Service Unavailable"), true},
		{"rate limit", errors.New("secondary rate limit hit"), true},
		{"auth failure", errors.New("401 unauthorized"), false},
		{"not found", errors.New("repository not found"), false},
		{"schema error", fmt.Errorf("bad payload: %w", harvesterrors.ErrBadSchema), false},
		{"unknown error", errors.New("something unexpected"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inspector.IsRetryable(tt.err); got != tt.retryable {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.retryable)
			}
		})
	}
}
