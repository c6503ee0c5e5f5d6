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

package github

import (
	"context"
	"fmt"
	"time"

	harvesterrors "github.com/sirseerhq/sirseer-harvest/internal/errors"
)

// MockClient is a mock implementation of the GitHub Client interface for testing.
type MockClient struct {
	// ScriptFn, when set, computes the response for each search call.
	// It takes precedence over the static fields below.
	ScriptFn func(opts FetchOptions) (*SearchPage, error)

	// Page to return when no script is set.
	Page *SearchPage

	// Login returned by Viewer.
	Login string

	// Error to return
	Error error

	// Behavior flags
	ShouldFailAuth    bool
	ShouldFailNetwork bool

	// Track calls for verification
	CallCount int
	LastOwner string
	LastRepo  string
	LastOpts  FetchOptions
}

// NewMockClient creates a new mock client with default test data
func NewMockClient() *MockClient {
	return &MockClient{
		Page: &SearchPage{
			PullRequests: GenerateTestPRs(3, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
			IssueCount:   3,
		},
		Login: "octocat",
	}
}

// SearchPullRequests implements the Client interface
func (m *MockClient) SearchPullRequests(ctx context.Context, owner, repo string, opts FetchOptions) (*SearchPage, error) {
	m.CallCount++
	m.LastOwner = owner
	m.LastRepo = repo
	m.LastOpts = opts

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if m.ShouldFailAuth {
		return nil, fmt.Errorf("authentication failed: %w", harvesterrors.ErrInvalidToken)
	}
	if m.ShouldFailNetwork {
		return nil, fmt.Errorf("network timeout: %w", harvesterrors.ErrNetworkFailure)
	}
	if m.Error != nil {
		return nil, m.Error
	}

	if m.ScriptFn != nil {
		return m.ScriptFn(opts)
	}

	return m.Page, nil
}

// Viewer implements the Client interface
func (m *MockClient) Viewer(ctx context.Context) (string, error) {
	m.CallCount++

	if m.ShouldFailAuth {
		return "", fmt.Errorf("authentication failed: %w", harvesterrors.ErrInvalidToken)
	}
	if m.ShouldFailNetwork {
		return "", fmt.Errorf("network timeout: %w", harvesterrors.ErrNetworkFailure)
	}
	if m.Error != nil {
		return "", m.Error
	}

	return m.Login, nil
}

// GenerateTestPRs creates n sequential pull request records starting at the
// given creation time, one minute apart. Every third record is authored by
// a bot and left unmerged.
func GenerateTestPRs(n int, start time.Time) []PullRequest {
	prs := make([]PullRequest, 0, n)
	for i := 0; i < n; i++ {
		created := start.Add(time.Duration(i) * time.Minute)
		pr := PullRequest{
			Number:     1000 + i,
			Title:      fmt.Sprintf("Test PR %d", 1000+i),
			CreatedAt:  created,
			AuthorType: "User",
			BaseRef:    "main",
			Comments:   i % 5,
			Additions:  10 * (i + 1),
			Deletions:  i,
		}
		if i%3 == 2 {
			pr.AuthorType = "Bot"
		} else {
			merged := created.Add(time.Hour)
			pr.MergedAt = &merged
		}
		prs = append(prs, pr)
	}
	return prs
}
