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

// Package harvest implements the range-partitioned pagination driver.
//
// GitHub Search reports at most 1000 matches per query. To extract every
// pull request in a window that may contain millions, the driver keeps an
// explicit stack of time ranges, bisects any range whose match count
// exceeds the cap, and cursor-paginates the ranges that fit. Records are
// streamed to the output sink as each page arrives; the sink is flushed at
// page boundaries so interruption never costs a completed page.
//
// Failures are isolated per range: a range that exhausts the client's retry
// budget is recorded in the run summary and the remaining work continues.
// Authentication failures abort the whole run since no later range can
// succeed with a bad token.
package harvest
