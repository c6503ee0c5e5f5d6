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

// Package timerange defines the half-open time intervals used to partition
// a fetch window. GitHub Search caps any single query at 1000 results, so
// windows whose match count exceeds the cap are bisected into sub-ranges
// until each one fits.
package timerange

import (
	"fmt"
	"time"
)

// MinWidth is the smallest range the bisection is allowed to produce.
// GitHub's created: qualifier has second granularity, so splitting below
// one second cannot reduce a range's match count any further. A sub-second
// range that still overflows the result cap is a data anomaly and must be
// failed explicitly rather than bisected forever.
const MinWidth = time.Second

// Range is a half-open interval [Start, End) over PR creation timestamps.
// Invariant: Start < End. Both bounds are UTC.
type Range struct {
	Start time.Time
	End   time.Time
}

// New returns a Range covering [start, end). It returns an error if the
// interval is empty or inverted.
func New(start, end time.Time) (Range, error) {
	if !start.Before(end) {
		return Range{}, fmt.Errorf("invalid range: start %s is not before end %s",
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return Range{Start: start.UTC(), End: end.UTC()}, nil
}

// Width returns the duration covered by the range.
func (r Range) Width() time.Duration {
	return r.End.Sub(r.Start)
}

// Bisect splits the range at its temporal midpoint into two half-open
// sub-ranges that tile the original exactly: [Start, mid) and [mid, End).
// The midpoint is truncated to second granularity to match the resolution
// of GitHub's created: search qualifier.
func (r Range) Bisect() (Range, Range) {
	mid := r.Start.Add(r.Width() / 2).Truncate(time.Second)

	// Truncation can collapse the midpoint onto a bound for very narrow
	// ranges; fall back to the untruncated midpoint to keep both halves
	// non-empty.
	if !mid.After(r.Start) || !mid.Before(r.End) {
		mid = r.Start.Add(r.Width() / 2)
	}

	return Range{Start: r.Start, End: mid}, Range{Start: mid, End: r.End}
}

// Divisible reports whether the range is still wide enough to bisect.
func (r Range) Divisible() bool {
	return r.Width() > MinWidth
}

// String formats the range for logs and failure reports.
func (r Range) String() string {
	return fmt.Sprintf("%s..%s",
		r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339))
}
