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

// Package output provides the CSV sink for harvested pull-request records.
//
// Records are appended row by row and flushed at page boundaries rather than
// buffered for the whole run, so a killed process still leaves a parseable
// file behind: a header plus N complete rows, never a truncated one.
// Standard CSV quoting handles titles containing delimiters or quotes.
package output
