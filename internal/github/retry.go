// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package github

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/sirseerhq/sirseer-harvest/internal/giterror"
)

// RetryConfig configures the retry behavior for API calls
type RetryConfig struct {
	// MaxAttempts is the total number of attempts per query, including the
	// first one.
	MaxAttempts int
	// InitialBackoff is the initial backoff duration
	InitialBackoff time.Duration
	// MaxBackoff is the maximum backoff duration
	MaxBackoff time.Duration
	// BackoffMultiplier is the multiplier for exponential backoff
	BackoffMultiplier float64
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:       5,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// RetryClient wraps a GitHub client with automatic retry logic for
// transient failures using exponential backoff with jitter. Permanent
// failures (auth, not found, schema) propagate immediately: retrying them
// cannot succeed.
type RetryClient struct {
	client    Client
	config    *RetryConfig
	inspector giterror.Inspector
}

// NewRetryClient creates a new RetryClient with the given configuration
func NewRetryClient(client Client, config *RetryConfig) Client {
	if config == nil {
		config = DefaultRetryConfig()
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}
	return &RetryClient{
		client:    client,
		config:    config,
		inspector: giterror.NewInspector(),
	}
}

// SearchPullRequests implements the Client interface with retry logic
func (r *RetryClient) SearchPullRequests(ctx context.Context, owner, repo string, opts FetchOptions) (*SearchPage, error) {
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		page, err := r.client.SearchPullRequests(ctx, owner, repo, opts)
		if err == nil {
			return page, nil
		}

		lastErr = err

		if !r.inspector.IsRetryable(err) {
			return nil, err
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		// No sleep after the final attempt.
		if attempt == r.config.MaxAttempts {
			break
		}

		backoff := r.calculateBackoff(attempt - 1)
		if r.inspector.IsRateLimitError(err) {
			fmt.Fprintf(os.Stderr, "Rate limit hit. Waiting %v before retry (attempt %d/%d)...\n",
				backoff, attempt, r.config.MaxAttempts)
		} else {
			fmt.Fprintf(os.Stderr, "Transient error. Retrying in %v (attempt %d/%d)...\n",
				backoff, attempt, r.config.MaxAttempts)
		}

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", r.config.MaxAttempts, lastErr)
}

// Viewer implements the Client interface with retry logic
func (r *RetryClient) Viewer(ctx context.Context) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		login, err := r.client.Viewer(ctx)
		if err == nil {
			return login, nil
		}

		lastErr = err

		if !r.inspector.IsRetryable(err) {
			return "", err
		}

		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		if attempt == r.config.MaxAttempts {
			break
		}

		backoff := r.calculateBackoff(attempt - 1)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	return "", fmt.Errorf("failed after %d attempts: %w", r.config.MaxAttempts, lastErr)
}

// calculateBackoff calculates the backoff duration for the given attempt
func (r *RetryClient) calculateBackoff(attempt int) time.Duration {
	backoff := float64(r.config.InitialBackoff) * math.Pow(r.config.BackoffMultiplier, float64(attempt))

	if backoff > float64(r.config.MaxBackoff) {
		backoff = float64(r.config.MaxBackoff)
	}

	// Add jitter (±10%) to prevent thundering herd
	jitter := backoff * 0.1 * (2*float64(time.Now().UnixNano()%100)/100 - 1)
	backoff += jitter

	return time.Duration(backoff)
}
