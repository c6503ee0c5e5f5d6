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
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	harvesterrors "github.com/sirseerhq/sirseer-harvest/internal/errors"
	"github.com/sirseerhq/sirseer-harvest/internal/github"
	"github.com/sirseerhq/sirseer-harvest/internal/timerange"
)

// memWriter captures records in memory and tracks flush boundaries.
type memWriter struct {
	records []github.PullRequest
	flushes int
	flushAt []int // record count at each flush
}

func (m *memWriter) Write(pr github.PullRequest) error {
	m.records = append(m.records, pr)
	return nil
}

func (m *memWriter) Flush() error {
	m.flushes++
	m.flushAt = append(m.flushAt, len(m.records))
	return nil
}

func (m *memWriter) Count() int { return len(m.records) }

func (m *memWriter) Close() error { return nil }

// callKey identifies one client call by range and cursor.
type callKey struct {
	rng   string
	after string
}

// scriptedClient routes each search call through a fixed response table
// and records the call order.
func scriptedClient(t *testing.T, script map[callKey]*github.SearchPage) (*github.MockClient, *[]callKey) {
	t.Helper()
	var calls []callKey
	mock := &github.MockClient{}
	mock.ScriptFn = func(opts github.FetchOptions) (*github.SearchPage, error) {
		key := callKey{rng: opts.Range.String(), after: opts.After}
		calls = append(calls, key)
		page, ok := script[key]
		if !ok {
			t.Fatalf("unexpected client call: range=%s after=%q", key.rng, key.after)
		}
		return page, nil
	}
	return mock, &calls
}

func mustRange(t *testing.T, start, end time.Time) timerange.Range {
	t.Helper()
	r, err := timerange.New(start, end)
	require.NoError(t, err)
	return r
}

func day(t *testing.T, d int) time.Time {
	t.Helper()
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func page(count int, prs []github.PullRequest, cursor string) *github.SearchPage {
	return &github.SearchPage{
		PullRequests: prs,
		IssueCount:   count,
		HasNextPage:  cursor != "",
		EndCursor:    cursor,
	}
}

func TestDriver_SinglePageRange(t *testing.T) {
	window := mustRange(t, day(t, 1), day(t, 2))
	prs := github.GenerateTestPRs(3, day(t, 1))

	mock, _ := scriptedClient(t, map[callKey]*github.SearchPage{
		{window.String(), ""}: page(3, prs, ""),
	})
	sink := &memWriter{}

	summary, err := New(mock, sink, "octocat", "hello", Options{}).Run(context.Background(), window)
	require.NoError(t, err)

	require.Equal(t, 3, summary.Records)
	require.Equal(t, 1, summary.RangesCompleted)
	require.Equal(t, 0, summary.RangesSplit)
	require.True(t, summary.Ok())
	require.Equal(t, prs, sink.records)
	require.GreaterOrEqual(t, sink.flushes, 1)
}

func TestDriver_PaginatesWithinCap(t *testing.T) {
	window := mustRange(t, day(t, 1), day(t, 2))
	page1 := github.GenerateTestPRs(2, day(t, 1))
	page2 := github.GenerateTestPRs(2, day(t, 1).Add(2*time.Hour))

	mock, calls := scriptedClient(t, map[callKey]*github.SearchPage{
		{window.String(), ""}:         page(4, page1, "cursor-1"),
		{window.String(), "cursor-1"}: page(4, page2, ""),
	})
	sink := &memWriter{}

	summary, err := New(mock, sink, "octocat", "hello", Options{}).Run(context.Background(), window)
	require.NoError(t, err)

	require.Equal(t, 4, summary.Records)
	require.Equal(t, 1, summary.RangesCompleted)
	require.Len(t, *calls, 2)

	// Records arrive in page order within the range.
	require.Equal(t, append(append([]github.PullRequest{}, page1...), page2...), sink.records)

	// Each page must be flushed before the next is fetched.
	require.Equal(t, []int{2, 4}, sink.flushAt)
}

func TestDriver_OverCapRangeBisectsBeforePaginating(t *testing.T) {
	window := mustRange(t, day(t, 1), day(t, 3))
	first, second := window.Bisect()

	firstPRs := github.GenerateTestPRs(2, day(t, 1))
	secondPRs := github.GenerateTestPRs(3, day(t, 2))

	mock, calls := scriptedClient(t, map[callKey]*github.SearchPage{
		{window.String(), ""}: page(1500, nil, ""),
		{first.String(), ""}:  page(2, firstPRs, ""),
		{second.String(), ""}: page(3, secondPRs, ""),
	})
	sink := &memWriter{}

	summary, err := New(mock, sink, "octocat", "hello", Options{}).Run(context.Background(), window)
	require.NoError(t, err)

	require.Equal(t, 5, summary.Records)
	require.Equal(t, 2, summary.RangesCompleted)
	require.Equal(t, 1, summary.RangesSplit)

	// The over-cap range must never be paginated: no call may use a cursor
	// against the original window.
	for _, c := range *calls {
		if c.rng == window.String() {
			require.Empty(t, c.after, "over-cap range was paginated")
		}
	}

	// Oldest half processed first.
	require.Equal(t, first.String(), (*calls)[1].rng)
	require.Equal(t, second.String(), (*calls)[2].rng)
}

func TestDriver_RecursiveBisectionTilesWindow(t *testing.T) {
	window := mustRange(t, day(t, 1), day(t, 5))

	// Every range wider than a day reports over-cap; day-or-narrower
	// ranges fit. The script is computed on the fly to follow the
	// driver's own bisection.
	var leaves []timerange.Range
	mock := &github.MockClient{}
	mock.ScriptFn = func(opts github.FetchOptions) (*github.SearchPage, error) {
		if opts.Range.Width() > 24*time.Hour {
			return page(5000, nil, ""), nil
		}
		leaves = append(leaves, opts.Range)
		return page(10, github.GenerateTestPRs(1, opts.Range.Start), ""), nil
	}
	sink := &memWriter{}

	summary, err := New(mock, sink, "octocat", "hello", Options{}).Run(context.Background(), window)
	require.NoError(t, err)
	require.True(t, summary.Ok())
	require.Equal(t, len(leaves), summary.RangesCompleted)

	// The paginated leaves must tile the window exactly: no gaps, no
	// overlaps, in oldest-first order.
	require.NotEmpty(t, leaves)
	require.Equal(t, window.Start, leaves[0].Start)
	require.Equal(t, window.End, leaves[len(leaves)-1].End)
	for i := 1; i < len(leaves); i++ {
		require.Equal(t, leaves[i-1].End, leaves[i].Start)
	}
}

func TestDriver_CountAtCapPaginates(t *testing.T) {
	window := mustRange(t, day(t, 1), day(t, 2))
	prs := github.GenerateTestPRs(2, day(t, 1))

	// Exactly at the cap is still fetchable in full; only strictly greater
	// counts force a bisection.
	mock, calls := scriptedClient(t, map[callKey]*github.SearchPage{
		{window.String(), ""}: page(DefaultResultCap, prs, ""),
	})
	sink := &memWriter{}

	summary, err := New(mock, sink, "octocat", "hello", Options{}).Run(context.Background(), window)
	require.NoError(t, err)
	require.Equal(t, 0, summary.RangesSplit)
	require.Equal(t, 1, summary.RangesCompleted)
	require.Len(t, *calls, 1)
}

func TestDriver_ZeroCountRangeCompletesEmpty(t *testing.T) {
	window := mustRange(t, day(t, 1), day(t, 2))

	mock, _ := scriptedClient(t, map[callKey]*github.SearchPage{
		{window.String(), ""}: page(0, nil, ""),
	})
	sink := &memWriter{}

	summary, err := New(mock, sink, "octocat", "hello", Options{}).Run(context.Background(), window)
	require.NoError(t, err)
	require.True(t, summary.Ok())
	require.Equal(t, 0, summary.Records)
	require.Equal(t, 1, summary.RangesCompleted)
}

func TestDriver_RangeFailureIsolated(t *testing.T) {
	window := mustRange(t, day(t, 1), day(t, 3))
	first, second := window.Bisect()
	secondPRs := github.GenerateTestPRs(2, day(t, 2))

	mock := &github.MockClient{}
	mock.ScriptFn = func(opts github.FetchOptions) (*github.SearchPage, error) {
		switch {
		case opts.Range.String() == window.String():
			return page(1500, nil, ""), nil
		case opts.Range.String() == first.String():
			return nil, fmt.Errorf("failed after 5 attempts: %w", harvesterrors.ErrNetworkFailure)
		case opts.Range.String() == second.String():
			return page(2, secondPRs, ""), nil
		}
		return nil, fmt.Errorf("unexpected range %s", opts.Range)
	}
	sink := &memWriter{}

	summary, err := New(mock, sink, "octocat", "hello", Options{}).Run(context.Background(), window)
	require.NoError(t, err)

	// The failed half is recorded and excluded; the rest of the work
	// continues and its output is kept.
	require.False(t, summary.Ok())
	require.Len(t, summary.Failed, 1)
	require.Equal(t, first.String(), summary.Failed[0].Range.String())
	require.Contains(t, summary.Failed[0].Reason, "network")
	require.Equal(t, 2, summary.Records)
	require.Equal(t, 1, summary.RangesCompleted)
}

func TestDriver_MidPaginationFailureKeepsWrittenPages(t *testing.T) {
	window := mustRange(t, day(t, 1), day(t, 2))
	page1 := github.GenerateTestPRs(2, day(t, 1))

	mock := &github.MockClient{}
	mock.ScriptFn = func(opts github.FetchOptions) (*github.SearchPage, error) {
		if opts.After == "" {
			return page(4, page1, "cursor-1"), nil
		}
		return nil, fmt.Errorf("failed after 5 attempts: %w", harvesterrors.ErrNetworkFailure)
	}
	sink := &memWriter{}

	summary, err := New(mock, sink, "octocat", "hello", Options{}).Run(context.Background(), window)
	require.NoError(t, err)

	require.Len(t, summary.Failed, 1)
	require.Equal(t, 2, summary.Records)
	require.Equal(t, 0, summary.RangesCompleted)
}

func TestDriver_AuthErrorAbortsRun(t *testing.T) {
	window := mustRange(t, day(t, 1), day(t, 3))

	mock := &github.MockClient{ShouldFailAuth: true}
	sink := &memWriter{}

	_, err := New(mock, sink, "octocat", "hello", Options{}).Run(context.Background(), window)
	require.ErrorIs(t, err, harvesterrors.ErrInvalidToken)
	require.Equal(t, 1, mock.CallCount)
}

func TestDriver_SubSecondOverCapFailsFast(t *testing.T) {
	start := day(t, 1)
	window := mustRange(t, start, start.Add(time.Second))

	mock, calls := scriptedClient(t, map[callKey]*github.SearchPage{
		{window.String(), ""}: page(5000, nil, ""),
	})
	sink := &memWriter{}

	summary, err := New(mock, sink, "octocat", "hello", Options{}).Run(context.Background(), window)
	require.NoError(t, err)

	// A sub-second range over the cap is a data anomaly: fail it with a
	// diagnostic instead of bisecting forever.
	require.Len(t, summary.Failed, 1)
	require.Contains(t, summary.Failed[0].Reason, "cap")
	require.Len(t, *calls, 1)
}

func TestDriver_CancellationStopsPromptly(t *testing.T) {
	window := mustRange(t, day(t, 1), day(t, 2))
	page1 := github.GenerateTestPRs(2, day(t, 1))

	ctx, cancel := context.WithCancel(context.Background())

	mock := &github.MockClient{}
	mock.ScriptFn = func(opts github.FetchOptions) (*github.SearchPage, error) {
		// Cancel while the first page is "in flight": the driver must not
		// issue the cursor follow-up.
		cancel()
		return page(4, page1, "cursor-1"), nil
	}
	sink := &memWriter{}

	summary, err := New(mock, sink, "octocat", "hello", Options{}).Run(ctx, window)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, mock.CallCount)

	// The already-received page is flushed before the run stops.
	require.Equal(t, 2, summary.Records)
	require.Equal(t, []int{2}, sink.flushAt)
}

func TestDriver_SinkFailureAborts(t *testing.T) {
	window := mustRange(t, day(t, 1), day(t, 2))

	mock, _ := scriptedClient(t, map[callKey]*github.SearchPage{
		{window.String(), ""}: page(1, github.GenerateTestPRs(1, day(t, 1)), ""),
	})

	_, err := New(mock, &failingWriter{}, "octocat", "hello", Options{}).Run(context.Background(), window)
	require.Error(t, err)
	require.Contains(t, err.Error(), "sink")
}

type failingWriter struct{}

func (f *failingWriter) Write(github.PullRequest) error { return errors.New("disk full") }
func (f *failingWriter) Flush() error                   { return errors.New("disk full") }
func (f *failingWriter) Count() int                     { return 0 }
func (f *failingWriter) Close() error                   { return nil }
