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

import "context"

// Client defines the interface for interacting with GitHub's API.
// This interface allows for easy mocking in tests.
type Client interface {
	// SearchPullRequests retrieves one page of pull requests created within
	// opts.Range, cursor-paginated through opts.After. The returned page
	// includes the total match count for the range and the rate-limit state
	// read from the response payload.
	SearchPullRequests(ctx context.Context, owner, repo string, opts FetchOptions) (*SearchPage, error)

	// Viewer runs a minimal query returning the authenticated user's login.
	// Used by the connectivity check; it never touches the output sink.
	Viewer(ctx context.Context) (string, error)
}
