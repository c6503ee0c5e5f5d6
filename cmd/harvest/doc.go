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

// Package main implements the sirseer-harvest command-line interface.
// This tool extracts pull-request metadata from one GitHub repository via
// the GraphQL API and writes it to a CSV file.
//
// The CLI supports:
//   - fetch: harvest the configured repository's PRs into CSV (default
//     configuration comes from the environment and optional config files,
//     so no arguments are required)
//   - check: a lightweight connectivity test that confirms the token and
//     endpoint work without touching the output file
//
// Usage:
//
//	export GITHUB_TOKEN=your_token
//	export SIRSEER_REPO=microsoft/vscode
//	sirseer-harvest fetch
//
// Exit codes:
//   - 0: Success
//   - 1: General error, including one or more failed ranges
//   - 2: Authentication/configuration error
//   - 3: Network error
package main
