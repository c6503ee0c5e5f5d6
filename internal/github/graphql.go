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
	"net/http"
	"time"

	"github.com/shurcooL/graphql"
	harvesterrors "github.com/sirseerhq/sirseer-harvest/internal/errors"
	"github.com/sirseerhq/sirseer-harvest/internal/giterror"
	"github.com/sirseerhq/sirseer-harvest/internal/ratelimit"
)

// GraphQLClient implements the GitHub Client interface using the GraphQL API.
// Every call carries the bearer token, validates the decoded response shape,
// and records the cost-based rate-limit state so the next call can throttle
// itself before hitting the server.
type GraphQLClient struct {
	client    *graphql.Client
	gate      *ratelimit.Gate
	inspector giterror.Inspector
}

// NewGraphQLClient creates a new GitHub GraphQL client with the provided
// token and endpoint. The client is configured with:
//   - Authentication via the provided token
//   - Custom GraphQL endpoint URL (e.g., for GitHub Enterprise)
//   - Response size limiting to prevent memory issues
//   - User-Agent header for API compliance
//   - Proactive rate-limit throttling through the provided gate
func NewGraphQLClient(token, endpoint string, gate *ratelimit.Gate) *GraphQLClient {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	httpClient := &http.Client{
		Transport: &authTransport{
			token: token,
			base:  transport,
		},
	}

	if gate == nil {
		gate = ratelimit.NewGate(ratelimit.DefaultThreshold, ratelimit.DefaultBuffer)
	}

	return &GraphQLClient{
		client:    graphql.NewClient(endpoint, httpClient),
		gate:      gate,
		inspector: giterror.NewInspector(),
	}
}

// Viewer runs the minimal connectivity query and returns the login of the
// authenticated user. It is used by the check command to confirm that the
// token and endpoint work before a long fetch.
func (c *GraphQLClient) Viewer(ctx context.Context) (string, error) {
	var query struct {
		Viewer struct {
			Login graphql.String
		}
		RateLimit struct {
			Limit     graphql.Int
			Cost      graphql.Int
			Remaining graphql.Int
			ResetAt   time.Time
		} `graphql:"rateLimit"`
	}

	if err := c.gate.Wait(ctx); err != nil {
		return "", err
	}

	if err := c.client.Query(ctx, &query, nil); err != nil {
		return "", c.mapError(err, "", "")
	}

	c.gate.Update(ratelimit.State{
		Limit:     int(query.RateLimit.Limit),
		Cost:      int(query.RateLimit.Cost),
		Remaining: int(query.RateLimit.Remaining),
		ResetAt:   query.RateLimit.ResetAt,
	})

	return string(query.Viewer.Login), nil
}

// mapError maps GraphQL errors to our domain errors with actionable messages
func (c *GraphQLClient) mapError(err error, owner, repo string) error {
	if err == nil {
		return nil
	}

	// Check rate limit first, as 403 can be both auth and rate limit
	if c.inspector.IsRateLimitError(err) {
		return fmt.Errorf("GitHub API rate limit exceeded. Please wait before retrying: %w", harvesterrors.ErrRateLimit)
	}

	if c.inspector.IsAuthError(err) {
		return fmt.Errorf("GitHub API authentication failed. Please provide a valid token via the GITHUB_TOKEN environment variable: %w", harvesterrors.ErrInvalidToken)
	}

	if c.inspector.IsNotFoundError(err) {
		return fmt.Errorf("repository '%s/%s' not found. Please check the repository name and your access permissions: %w", owner, repo, harvesterrors.ErrRepoNotFound)
	}

	if c.inspector.IsSchemaError(err) {
		return fmt.Errorf("GitHub API returned a malformed response: %v: %w", err, harvesterrors.ErrBadSchema)
	}

	if c.inspector.IsNetworkError(err) {
		return fmt.Errorf("network error connecting to GitHub API (%v): %w", err, harvesterrors.ErrNetworkFailure)
	}

	return fmt.Errorf("failed to query GitHub API: %w", err)
}
