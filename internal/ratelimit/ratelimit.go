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

// Package ratelimit implements proactive throttling against GitHub's
// cost-based GraphQL rate limit. The limit state is carried inside every
// query response (not in HTTP headers), so the client records it after each
// call and waits before the next one when the budget runs low.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// State is a snapshot of the rateLimit object from a GraphQL response.
type State struct {
	// Limit is the total budget per window (5000 points for GitHub.com).
	Limit int
	// Cost is the point cost of the query that returned this snapshot.
	Cost int
	// Remaining is the number of points left in the current window.
	Remaining int
	// ResetAt is when the budget is restored.
	ResetAt time.Time
}

// Gate throttles the caller when the remaining rate-limit budget falls at
// or below a safety threshold. One Gate is shared by all calls made with a
// single token; the fetch flow is sequential so contention is not a concern,
// but the mutex keeps the type safe for reuse.
type Gate struct {
	mu        sync.Mutex
	state     State
	seen      bool
	threshold int
	buffer    time.Duration

	// Injectable for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// DefaultThreshold is the remaining-point level at which the gate starts
// sleeping until the reset time.
const DefaultThreshold = 100

// DefaultBuffer is added on top of resetAt to absorb clock skew between
// this machine and GitHub's servers.
const DefaultBuffer = 5 * time.Second

// NewGate creates a Gate with the given threshold and reset buffer.
// Non-positive arguments fall back to the defaults.
func NewGate(threshold int, buffer time.Duration) *Gate {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Gate{
		threshold: threshold,
		buffer:    buffer,
		now:       time.Now,
		sleep:     sleepContext,
	}
}

// Update records the rate-limit state from the latest response.
func (g *Gate) Update(s State) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = s
	g.seen = true
}

// Wait blocks until the next request is allowed to proceed. If the last
// observed budget is above the threshold (or no response has been seen yet)
// it returns immediately. Otherwise it sleeps until resetAt plus the buffer,
// honoring context cancellation.
func (g *Gate) Wait(ctx context.Context) error {
	g.mu.Lock()
	state := g.state
	seen := g.seen
	g.mu.Unlock()

	if !seen || state.Remaining > g.threshold {
		return nil
	}

	wait := state.ResetAt.Add(g.buffer).Sub(g.now())
	if wait <= 0 {
		return nil
	}

	return g.sleep(ctx, wait)
}

// Snapshot returns the last observed state and whether any state has been
// recorded yet.
func (g *Gate) Snapshot() (State, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state, g.seen
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
