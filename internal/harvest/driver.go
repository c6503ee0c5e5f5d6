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
	"fmt"

	"go.uber.org/zap"

	"github.com/sirseerhq/sirseer-harvest/internal/github"
	"github.com/sirseerhq/sirseer-harvest/internal/giterror"
	"github.com/sirseerhq/sirseer-harvest/internal/output"
	"github.com/sirseerhq/sirseer-harvest/internal/timerange"
)

// DefaultResultCap is GitHub Search's hard ceiling on matches returned for
// a single query. A query reporting a count at the cap can still be
// paginated in full; only counts strictly above it require bisection.
const DefaultResultCap = 1000

// Options tunes a Driver. Zero values fall back to defaults.
type Options struct {
	// ResultCap is the platform's per-query match ceiling.
	ResultCap int
	// PageSize is passed through to the client on every call.
	PageSize int
	// Logger receives per-range and per-page progress. Nil disables logging.
	Logger *zap.Logger
}

// Driver walks a bounded time window, bisecting over-cap ranges and
// paginating the rest, streaming every record to the sink as it arrives.
// It owns the work stack; the client and sink are supplied by the caller.
type Driver struct {
	client    github.Client
	writer    output.RecordWriter
	owner     string
	repo      string
	cap       int
	pageSize  int
	log       *zap.Logger
	inspector giterror.Inspector
}

// New creates a Driver for the given repository.
func New(client github.Client, writer output.RecordWriter, owner, repo string, opts Options) *Driver {
	if opts.ResultCap <= 0 {
		opts.ResultCap = DefaultResultCap
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Driver{
		client:    client,
		writer:    writer,
		owner:     owner,
		repo:      repo,
		cap:       opts.ResultCap,
		pageSize:  opts.PageSize,
		log:       opts.Logger,
		inspector: giterror.NewInspector(),
	}
}

// Run processes the whole window to completion or cancellation and returns
// the run summary. The returned error is non-nil only for run-level
// failures: cancellation, a broken sink, or an authentication rejection.
// Range-level failures are isolated into the summary instead.
func (d *Driver) Run(ctx context.Context, window timerange.Range) (*Summary, error) {
	summary := &Summary{}
	// Keep the written-record count accurate even when the run ends early.
	defer func() { summary.Records = d.writer.Count() }()

	// Explicit stack instead of recursion: pushing the later half first
	// keeps processing oldest-first, and every iteration shares the same
	// cancellation and failure-isolation checks.
	stack := []timerange.Range{window}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		r := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		d.log.Info("processing range", zap.Stringer("range", r))

		// The first page doubles as the count probe: if the range fits
		// under the cap its records are already in hand.
		page, err := d.client.SearchPullRequests(ctx, d.owner, d.repo, github.FetchOptions{
			Range:    r,
			PageSize: d.pageSize,
		})
		if err != nil {
			if abortErr := d.recordFailure(ctx, summary, r, err); abortErr != nil {
				return summary, abortErr
			}
			continue
		}

		if page.IssueCount > d.cap {
			if !r.Divisible() {
				// Sub-second range still above the cap: bisecting further
				// cannot help, so fail the range instead of looping.
				anomaly := fmt.Errorf("range narrower than %s still reports %d matches (cap %d)",
					timerange.MinWidth, page.IssueCount, d.cap)
				d.log.Warn("range failed",
					zap.Stringer("range", r), zap.Error(anomaly))
				summary.Failed = append(summary.Failed, FailedRange{Range: r, Reason: anomaly.Error()})
				continue
			}

			first, second := r.Bisect()
			d.log.Info("splitting range",
				zap.Stringer("range", r),
				zap.Int("count", page.IssueCount),
				zap.Stringer("first", first),
				zap.Stringer("second", second))
			stack = append(stack, second, first)
			summary.RangesSplit++
			continue
		}

		if err := d.paginate(ctx, summary, r, page); err != nil {
			return summary, err
		}
	}

	return summary, nil
}

// paginate drains one in-cap range starting from its already-fetched first
// page. Returns a non-nil error only for run-level failures.
func (d *Driver) paginate(ctx context.Context, summary *Summary, r timerange.Range, page *github.SearchPage) error {
	pageNum := 1
	written := 0

	for {
		for _, pr := range page.PullRequests {
			if err := d.writer.Write(pr); err != nil {
				return fmt.Errorf("output sink failed: %w", err)
			}
			written++
		}
		// Flush at the page boundary so interruption never leaves a
		// partially-written page behind.
		if err := d.writer.Flush(); err != nil {
			return fmt.Errorf("output sink failed: %w", err)
		}

		d.log.Info("page written",
			zap.Stringer("range", r),
			zap.Int("page", pageNum),
			zap.Int("records", len(page.PullRequests)),
			zap.Int("rate_limit_remaining", page.RateLimit.Remaining))

		if !page.HasNextPage {
			break
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		var err error
		page, err = d.client.SearchPullRequests(ctx, d.owner, d.repo, github.FetchOptions{
			Range:    r,
			After:    page.EndCursor,
			PageSize: d.pageSize,
		})
		if err != nil {
			return d.recordFailure(ctx, summary, r, err)
		}
		pageNum++
	}

	summary.RangesCompleted++
	d.log.Info("range complete",
		zap.Stringer("range", r),
		zap.Int("records", written),
		zap.Int("pages", pageNum))
	return nil
}

// recordFailure isolates a range-level failure into the summary. It returns
// a non-nil error when the failure must abort the whole run: cancellation,
// or an authentication rejection that no later range can get past.
func (d *Driver) recordFailure(ctx context.Context, summary *Summary, r timerange.Range, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if d.inspector.IsAuthError(err) {
		return err
	}

	d.log.Warn("range failed", zap.Stringer("range", r), zap.Error(err))
	summary.Failed = append(summary.Failed, FailedRange{Range: r, Reason: err.Error()})
	return nil
}
