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
	"time"

	"github.com/shurcooL/graphql"
	harvesterrors "github.com/sirseerhq/sirseer-harvest/internal/errors"
	"github.com/sirseerhq/sirseer-harvest/internal/ratelimit"
	"github.com/sirseerhq/sirseer-harvest/internal/timerange"
)

// searchTimeFormat is the second-granularity timestamp format accepted by
// GitHub's created: search qualifier.
const searchTimeFormat = "2006-01-02T15:04:05Z"

// buildSearchQuery constructs a GitHub search query for pull requests
// created within the given half-open range. GitHub's created:A..B syntax is
// inclusive on both ends, so the end bound is pulled back by one second to
// keep adjacent ranges from double-counting PRs created exactly on a split
// boundary.
func buildSearchQuery(owner, repo string, r timerange.Range) string {
	last := r.End.Add(-time.Second)
	if last.Before(r.Start) {
		last = r.Start
	}
	return fmt.Sprintf("repo:%s/%s is:pr created:%s..%s sort:created-asc",
		owner, repo,
		r.Start.UTC().Format(searchTimeFormat),
		last.UTC().Format(searchTimeFormat))
}

// SearchPullRequests fetches one page of pull requests created within
// opts.Range using GitHub's search API. The response carries issueCount (the
// total match count for the whole range), pagination info, and the
// rate-limit state, all decoded from a single payload.
func (c *GraphQLClient) SearchPullRequests(ctx context.Context, owner, repo string, opts FetchOptions) (*SearchPage, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	var query struct {
		RateLimit struct {
			Limit     graphql.Int
			Cost      graphql.Int
			Remaining graphql.Int
			ResetAt   time.Time
		} `graphql:"rateLimit"`

		Search struct {
			IssueCount graphql.Int
			PageInfo   struct {
				HasNextPage graphql.Boolean
				EndCursor   graphql.String
			}
			Nodes []struct {
				PullRequest struct {
					Number    graphql.Int
					Title     graphql.String
					CreatedAt time.Time
					MergedAt  *time.Time
					Author    *struct {
						Typename graphql.String `graphql:"__typename"`
					} `graphql:"author"`
					BaseRefName graphql.String
					Comments    struct {
						TotalCount graphql.Int
					} `graphql:"comments"`
					Additions graphql.Int
					Deletions graphql.Int
				} `graphql:"... on PullRequest"`
			}
		} `graphql:"search(query: $query, type: ISSUE, first: $first, after: $after)"`
	}

	variables := map[string]interface{}{
		"query": graphql.String(buildSearchQuery(owner, repo, opts.Range)),
		"first": graphql.Int(int32(pageSize)), // #nosec G115 - pageSize is capped at 100
	}

	// A null cursor means the first page of the range.
	if opts.After != "" {
		variables["after"] = graphql.String(opts.After)
	} else {
		variables["after"] = (*graphql.String)(nil)
	}

	// Proactive throttling: sleep out a depleted budget before issuing the
	// call, not after it fails.
	if err := c.gate.Wait(ctx); err != nil {
		return nil, err
	}

	if err := c.client.Query(ctx, &query, variables); err != nil {
		return nil, c.mapError(err, owner, repo)
	}

	page := &SearchPage{
		IssueCount:   int(query.Search.IssueCount),
		HasNextPage:  bool(query.Search.PageInfo.HasNextPage),
		EndCursor:    string(query.Search.PageInfo.EndCursor),
		PullRequests: make([]PullRequest, 0, len(query.Search.Nodes)),
		RateLimit: ratelimit.State{
			Limit:     int(query.RateLimit.Limit),
			Cost:      int(query.RateLimit.Cost),
			Remaining: int(query.RateLimit.Remaining),
			ResetAt:   query.RateLimit.ResetAt,
		},
	}

	if err := validateSearchPage(page); err != nil {
		return nil, err
	}

	c.gate.Update(page.RateLimit)

	for _, node := range query.Search.Nodes {
		pr := PullRequest{
			Number:    int(node.PullRequest.Number),
			Title:     string(node.PullRequest.Title),
			CreatedAt: node.PullRequest.CreatedAt,
			MergedAt:  node.PullRequest.MergedAt,
			BaseRef:   string(node.PullRequest.BaseRefName),
			Comments:  int(node.PullRequest.Comments.TotalCount),
			Additions: int(node.PullRequest.Additions),
			Deletions: int(node.PullRequest.Deletions),
		}

		// Deleted accounts resolve author to null; keep the type empty
		// rather than guessing.
		if node.PullRequest.Author != nil {
			pr.AuthorType = string(node.PullRequest.Author.Typename)
		}

		page.PullRequests = append(page.PullRequests, pr)
	}

	return page, nil
}

// validateSearchPage rejects responses that decoded without error but are
// missing fields the query always returns. GitHub always reports a non-zero
// rate-limit ceiling, and a page claiming more results must carry a cursor.
// Retrying cannot change the response structure, so these are fatal.
func validateSearchPage(page *SearchPage) error {
	if page.RateLimit.Limit == 0 {
		return fmt.Errorf("response missing rateLimit data: %w", harvesterrors.ErrBadSchema)
	}
	if page.HasNextPage && page.EndCursor == "" {
		return fmt.Errorf("response reports more pages but no end cursor: %w", harvesterrors.ErrBadSchema)
	}
	if page.IssueCount < 0 {
		return fmt.Errorf("response reports negative issue count %d: %w", page.IssueCount, harvesterrors.ErrBadSchema)
	}
	return nil
}
