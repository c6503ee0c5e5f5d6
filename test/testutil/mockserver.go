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

// Package testutil provides common test helpers for sirseer-harvest
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// PageKey identifies one search page request: the created:A..B qualifier
// carried in the search query, plus the pagination cursor ("" for the first
// page of a range).
type PageKey struct {
	Created string
	After   string
}

// searchRequest is the slice of the GraphQL request body the mock cares
// about.
type searchRequest struct {
	Variables struct {
		Query string  `json:"query"`
		First int     `json:"first"`
		After *string `json:"after"`
	} `json:"variables"`
}

// ScriptedSearchServer serves canned GraphQL search responses keyed by the
// created-range qualifier and cursor of each incoming request. Requests for
// pages outside the script fail the test.
type ScriptedSearchServer struct {
	*httptest.Server

	t      *testing.T
	mu     sync.Mutex
	script map[PageKey]map[string]any
	calls  []PageKey
}

// NewScriptedSearchServer starts a GraphQL mock wired to the given script.
// The server is shut down automatically when the test ends.
func NewScriptedSearchServer(t *testing.T, script map[PageKey]map[string]any) *ScriptedSearchServer {
	t.Helper()

	s := &ScriptedSearchServer{t: t, script: script}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Server.Close)
	return s
}

func (s *ScriptedSearchServer) handle(w http.ResponseWriter, r *http.Request) {
	if auth := r.Header.Get("Authorization"); !strings.HasPrefix(auth, "Bearer ") {
		s.t.Errorf("request missing bearer token, Authorization: %q", auth)
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.t.Errorf("failed to decode GraphQL request: %v", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	key := PageKey{Created: extractCreated(req.Variables.Query)}
	if req.Variables.After != nil {
		key.After = *req.Variables.After
	}

	s.mu.Lock()
	s.calls = append(s.calls, key)
	data, ok := s.script[key]
	s.mu.Unlock()

	if !ok {
		s.t.Errorf("unscripted search page requested: created=%q after=%q", key.Created, key.After)
		writeJSON(w, map[string]any{
			"errors": []map[string]any{{"message": "unscripted request"}},
		})
		return
	}

	writeJSON(w, map[string]any{"data": data})
}

// Calls returns the page keys requested so far, in order.
func (s *ScriptedSearchServer) Calls() []PageKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]PageKey(nil), s.calls...)
}

// extractCreated pulls the created:A..B qualifier out of a search query
// string.
func extractCreated(query string) string {
	for _, field := range strings.Fields(query) {
		if strings.HasPrefix(field, "created:") {
			return strings.TrimPrefix(field, "created:")
		}
	}
	return ""
}

func writeJSON(w http.ResponseWriter, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

// NewErrorServer creates a mock server that always returns the specified
// HTTP status.
func NewErrorServer(t *testing.T, statusCode int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(http.StatusText(statusCode)))
	}))
	t.Cleanup(server.Close)
	return server
}

// NewTransientErrorServer creates a mock server that fails with errorCode
// failCount times, then delegates to the scripted handler.
func NewTransientErrorServer(t *testing.T, failCount, errorCode int, script map[PageKey]map[string]any) *ScriptedSearchServer {
	t.Helper()

	s := &ScriptedSearchServer{t: t, script: script}
	var requestCount int32
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&requestCount, 1) <= int32(failCount) {
			w.WriteHeader(errorCode)
			_, _ = w.Write([]byte(http.StatusText(errorCode)))
			return
		}
		s.handle(w, r)
	}))
	t.Cleanup(s.Server.Close)
	return s
}

// SearchResponse builds the data object of one search page: the rate-limit
// block every query carries, the total match count for the range, and the
// page's nodes. A non-empty endCursor marks the page as non-final.
func SearchResponse(issueCount int, nodes []map[string]any, endCursor string) map[string]any {
	if nodes == nil {
		nodes = []map[string]any{}
	}
	var cursor any
	if endCursor != "" {
		cursor = endCursor
	}
	return map[string]any{
		"rateLimit": map[string]any{
			"limit":     5000,
			"cost":      1,
			"remaining": 4990,
			"resetAt":   time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
		},
		"search": map[string]any{
			"issueCount": issueCount,
			"pageInfo": map[string]any{
				"hasNextPage": endCursor != "",
				"endCursor":   cursor,
			},
			"nodes": nodes,
		},
	}
}

// PRNode builds one pull request node as it appears in a search response.
// A zero mergedAt renders as null; an empty authorType renders a null
// author, matching a deleted account.
func PRNode(number int, title string, createdAt time.Time, mergedAt time.Time, authorType, baseRef string, comments, additions, deletions int) map[string]any {
	node := map[string]any{
		"number":      number,
		"title":       title,
		"createdAt":   createdAt.UTC().Format(time.RFC3339),
		"mergedAt":    nil,
		"author":      nil,
		"baseRefName": baseRef,
		"comments":    map[string]any{"totalCount": comments},
		"additions":   additions,
		"deletions":   deletions,
	}
	if !mergedAt.IsZero() {
		node["mergedAt"] = mergedAt.UTC().Format(time.RFC3339)
	}
	if authorType != "" {
		node["author"] = map[string]any{"__typename": authorType}
	}
	return node
}

// CreatedQualifier formats the created:A..B search qualifier for a
// half-open range, matching the client's inclusive-bound translation.
func CreatedQualifier(start, end time.Time) string {
	last := end.Add(-time.Second)
	if last.Before(start) {
		last = start
	}
	const layout = "2006-01-02T15:04:05Z"
	return fmt.Sprintf("%s..%s", start.UTC().Format(layout), last.UTC().Format(layout))
}
