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

package harvest

import (
	"fmt"
	"io"

	"github.com/sirseerhq/sirseer-harvest/internal/timerange"
)

// FailedRange records a time range that could not be fetched after the
// client exhausted its retry budget. The bounds and reason are enough for
// an operator to re-run just the failed slice.
type FailedRange struct {
	Range  timerange.Range
	Reason string
}

// Summary is the end-of-run report.
type Summary struct {
	// Records is the total number of rows written to the sink.
	Records int
	// RangesCompleted counts ranges that were fully paginated.
	RangesCompleted int
	// RangesSplit counts ranges that were bisected instead of paginated.
	RangesSplit int
	// Failed lists ranges abandoned after retries were exhausted.
	Failed []FailedRange
}

// Ok reports whether the run completed with no failed ranges.
func (s *Summary) Ok() bool {
	return len(s.Failed) == 0
}

// Print writes a human-readable summary to w.
func (s *Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "Wrote %d records across %d ranges (%d splits)\n",
		s.Records, s.RangesCompleted, s.RangesSplit)
	if len(s.Failed) == 0 {
		return
	}
	fmt.Fprintf(w, "%d range(s) failed:\n", len(s.Failed))
	for _, f := range s.Failed {
		fmt.Fprintf(w, "  %s: %s\n", f.Range, f.Reason)
	}
}
