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

package output

import "github.com/sirseerhq/sirseer-harvest/internal/github"

// RecordWriter defines the interface for writing pull request records.
// This abstraction keeps the pagination driver independent of the output
// format and allows tests to capture records in memory.
type RecordWriter interface {
	// Write appends a single record to the output.
	Write(pr github.PullRequest) error

	// Flush pushes buffered rows to the underlying file. The driver calls
	// it at page boundaries so interrupted runs never lose whole pages.
	Flush() error

	// Count returns the number of records written so far.
	Count() int

	// Close flushes remaining rows and releases the underlying resources.
	Close() error
}
