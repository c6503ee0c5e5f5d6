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

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrorsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrInvalidToken,
		ErrRepoNotFound,
		ErrNetworkFailure,
		ErrRateLimit,
		ErrBadSchema,
		ErrRangesFailed,
		ErrInvalidConfig,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			if errors.Is(a, b) {
				t.Errorf("sentinel %v unexpectedly matches %v", a, b)
			}
		}
	}
}

func TestWrappedSentinelMatches(t *testing.T) {
	tests := []struct {
		name     string
		sentinel error
	}{
		{"invalid token", ErrInvalidToken},
		{"repo not found", ErrRepoNotFound},
		{"network failure", ErrNetworkFailure},
		{"rate limit", ErrRateLimit},
		{"bad schema", ErrBadSchema},
		{"ranges failed", ErrRangesFailed},
		{"invalid config", ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer context: %w", fmt.Errorf("inner context: %w", tt.sentinel))
			if !errors.Is(wrapped, tt.sentinel) {
				t.Errorf("wrapped error does not match sentinel %v", tt.sentinel)
			}
		})
	}
}
