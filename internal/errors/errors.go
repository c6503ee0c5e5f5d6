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

// Package errors defines sentinel errors for consistent error handling across the application.
// These errors map to specific exit codes in the CLI for proper scripting support.
package errors

import "errors"

// Sentinel errors for consistent error handling and exit code mapping
var (
	// ErrInvalidToken indicates GitHub authentication failed.
	// Maps to exit code 2.
	ErrInvalidToken = errors.New("invalid github token")

	// ErrRepoNotFound indicates the specified repository does not exist or is not accessible.
	// Maps to exit code 2.
	ErrRepoNotFound = errors.New("repository not found")

	// ErrNetworkFailure indicates a network connection problem.
	// Maps to exit code 3.
	ErrNetworkFailure = errors.New("network connection failed")

	// ErrRateLimit indicates GitHub API rate limit has been exceeded.
	// Maps to exit code 2.
	ErrRateLimit = errors.New("github rate limit exceeded")

	// ErrBadSchema indicates a GraphQL response was missing fields the search
	// query always returns. Retrying cannot help, so it is never retried.
	// Maps to exit code 1.
	ErrBadSchema = errors.New("unexpected response schema")

	// ErrRangesFailed indicates one or more time ranges could not be fetched
	// after exhausting retries. The run still produces partial output.
	// Maps to exit code 1.
	ErrRangesFailed = errors.New("one or more ranges failed")

	// ErrInvalidConfig indicates the provided configuration is missing
	// required values or contains implausible ones.
	// Maps to exit code 2.
	ErrInvalidConfig = errors.New("invalid configuration")
)
