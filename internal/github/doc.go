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

// Package github implements the GraphQL query client for sirseer-harvest.
//
// All data flows through a single GraphQL search query that returns, in one
// payload: the matching pull requests for one page, the total match count
// for the query (issueCount), cursor pagination info, and the cost-based
// rate-limit state. The client layers are:
//
//   - GraphQLClient: executes queries over an authenticated transport,
//     validates the response shape, and self-throttles on the rate limit.
//   - RetryClient: decorates any Client with bounded exponential-backoff
//     retries for transient failures.
//
// The client knows nothing about time-range partitioning or the output
// sink; that logic lives in the harvest package.
package github
