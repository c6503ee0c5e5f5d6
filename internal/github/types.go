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
	"time"

	"github.com/sirseerhq/sirseer-harvest/internal/ratelimit"
	"github.com/sirseerhq/sirseer-harvest/internal/timerange"
)

// PullRequest is the immutable record extracted from one search result node.
// It carries exactly the fields that end up as one CSV row; its lifecycle
// ends the moment it is written to the sink.
type PullRequest struct {
	Number    int
	Title     string
	CreatedAt time.Time
	// MergedAt is nil for unmerged or still-open pull requests.
	MergedAt *time.Time
	// AuthorType is the GraphQL __typename of the author: "User" for human
	// accounts, "Bot" for automation. Deleted accounts resolve to "".
	AuthorType string
	BaseRef    string
	Comments   int
	Additions  int
	Deletions  int
}

// SearchPage is the decoded result of one search query. IssueCount is the
// total number of matches for the whole query, not just this page; the
// driver compares it against the result cap to decide whether to paginate
// or bisect.
type SearchPage struct {
	PullRequests []PullRequest
	IssueCount   int
	HasNextPage  bool
	// EndCursor is the opaque pagination token for the next page. It is
	// only meaningful when HasNextPage is true.
	EndCursor string
	RateLimit ratelimit.State
}

// FetchOptions configures one search call.
type FetchOptions struct {
	// Range scopes the search to PRs created within the half-open interval.
	Range timerange.Range

	// After is the cursor for pagination. Empty string fetches the first
	// page of the range.
	After string

	// PageSize controls how many PRs to fetch per page. Defaults to
	// defaultPageSize; GitHub caps it at 100.
	PageSize int
}

// Default values for fetch operations
const (
	defaultPageSize = 100
	maxPageSize     = 100
)
