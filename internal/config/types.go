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

// Package config types define the configuration structures used throughout
// sirseer-harvest. These types represent settings that can be loaded from
// YAML configuration files, .env files, or environment variables.
package config

// Config represents the complete configuration for sirseer-harvest.
// It consolidates settings from various sources and provides a unified
// interface for accessing configuration values throughout the application.
type Config struct {
	GitHub    GitHubConfig    `yaml:"github"`
	Fetch     FetchConfig     `yaml:"fetch"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Retry     RetryConfig     `yaml:"retry"`
}

// GitHubConfig contains GitHub-specific settings including the GraphQL
// endpoint and the name of the environment variable holding the token.
// This allows easy configuration for GitHub Enterprise deployments.
type GitHubConfig struct {
	GraphQLEndpoint string `yaml:"graphql_endpoint"`
	TokenEnv        string `yaml:"token_env"`
}

// FetchConfig controls what gets fetched and where it lands.
type FetchConfig struct {
	// Repository is the target in "owner/name" format.
	Repository string `yaml:"repository"`
	// WindowStart is the inclusive start of the overall time window,
	// RFC3339 or plain date (2006-01-02). The window always ends at "now".
	WindowStart string `yaml:"window_start"`
	// Output is the path of the CSV artifact.
	Output string `yaml:"output"`
	// PageSize is the number of records requested per query (1..100).
	PageSize int `yaml:"page_size"`
	// ResultCap is the platform's per-query match ceiling.
	ResultCap int `yaml:"result_cap"`
}

// RateLimitConfig controls the proactive rate-limit gate.
type RateLimitConfig struct {
	// Threshold is the remaining-point level at which the client sleeps
	// until the reset time.
	Threshold int `yaml:"threshold"`
	// BufferSeconds is added to the reset time to absorb clock skew.
	BufferSeconds int `yaml:"buffer_seconds"`
}

// RetryConfig controls transient-failure retries inside the client.
type RetryConfig struct {
	// MaxAttempts is the total attempt count per query, first try included.
	MaxAttempts int `yaml:"max_attempts"`
}

// DefaultConfig returns a Config with sensible defaults suitable for most
// use cases. These defaults are optimized for public GitHub.com usage but
// can be overridden for GitHub Enterprise or special requirements.
func DefaultConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{
			GraphQLEndpoint: "https://api.github.com/graphql",
			TokenEnv:        "GITHUB_TOKEN",
		},
		Fetch: FetchConfig{
			WindowStart: "2020-01-01T00:00:00Z",
			Output:      "prs.csv",
			PageSize:    100,
			ResultCap:   1000,
		},
		RateLimit: RateLimitConfig{
			Threshold:     100,
			BufferSeconds: 5,
		},
		Retry: RetryConfig{
			MaxAttempts: 5,
		},
	}
}
