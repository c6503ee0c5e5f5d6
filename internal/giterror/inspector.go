package giterror

import (
	"errors"
	"strings"

	harvesterrors "github.com/sirseerhq/sirseer-harvest/internal/errors"
)

// Inspector provides methods for analyzing GitHub API errors.
type Inspector interface {
	// IsAuthError returns true if the error represents an authentication or authorization failure.
	IsAuthError(err error) bool

	// IsNotFoundError returns true if the error represents a resource not found error.
	IsNotFoundError(err error) bool

	// IsRateLimitError returns true if the error represents a rate limit error.
	IsRateLimitError(err error) bool

	// IsSchemaError returns true if the error represents a malformed or
	// incomplete response body.
	IsSchemaError(err error) bool

	// IsNetworkError returns true if the error represents a network connectivity error.
	IsNetworkError(err error) bool

	// IsRetryable returns true if retrying the same request could succeed.
	IsRetryable(err error) bool
}

// GitHubErrorInspector implements the Inspector interface for GitHub API errors.
type GitHubErrorInspector struct{}

// NewInspector creates a new GitHubErrorInspector.
func NewInspector() Inspector {
	return &GitHubErrorInspector{}
}

// IsAuthError checks if the error is an authentication or authorization error.
func (i *GitHubErrorInspector) IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, harvesterrors.ErrInvalidToken) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "401") ||
		strings.Contains(errStr, "unauthorized") ||
		strings.Contains(errStr, "bad credentials") ||
		strings.Contains(errStr, "authentication")
}

// IsNotFoundError checks if the error is a not found error.
func (i *GitHubErrorInspector) IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, harvesterrors.ErrRepoNotFound) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "404") ||
		strings.Contains(errStr, "not found") ||
		strings.Contains(errStr, "could not resolve to a repository")
}

// IsRateLimitError checks if the error is a rate limit error. Both the
// primary cost-based limit and GitHub's secondary abuse limit land here.
func (i *GitHubErrorInspector) IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, harvesterrors.ErrRateLimit) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "secondary rate limit") ||
		strings.Contains(errStr, "abuse detection")
}

// IsSchemaError checks if the error indicates a malformed response body.
func (i *GitHubErrorInspector) IsSchemaError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, harvesterrors.ErrBadSchema) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "unexpected response schema") ||
		strings.Contains(errStr, "invalid character") ||
		strings.Contains(errStr, "unexpected end of json")
}

// IsNetworkError checks if the error is a network connectivity error.
// Server-side 5xx responses are grouped here as well since they share the
// same retry treatment.
func (i *GitHubErrorInspector) IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, harvesterrors.ErrNetworkFailure) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "temporary failure") ||
		strings.Contains(errStr, "dial tcp") ||
		strings.Contains(errStr, "tls handshake") ||
		strings.Contains(errStr, "network is unreachable") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "504") ||
		strings.Contains(errStr, "bad gateway") ||
		strings.Contains(errStr, "service unavailable") ||
		strings.Contains(errStr, "gateway timeout")
}

// IsRetryable reports whether retrying the same request could succeed.
// Auth failures, missing repositories and schema errors are permanent:
// the response will not change on a second attempt.
func (i *GitHubErrorInspector) IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if i.IsAuthError(err) || i.IsNotFoundError(err) || i.IsSchemaError(err) {
		return false
	}
	return i.IsNetworkError(err) || i.IsRateLimitError(err)
}
