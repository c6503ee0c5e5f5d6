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

// Package config provides configuration management for sirseer-harvest with
// support for multiple configuration sources and a well-defined precedence
// order.
//
// Configuration sources (in precedence order, highest to lowest):
//  1. Environment variables (including those loaded from a .env file)
//  2. YAML configuration file
//  3. Built-in defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	harvesterrors "github.com/sirseerhq/sirseer-harvest/internal/errors"
	"github.com/sirseerhq/sirseer-harvest/internal/timerange"
)

// Load builds the effective configuration. If configPath is provided, the
// YAML file at that path is loaded; otherwise standard locations are tried:
//   - .sirseer-harvest.yaml (current directory)
//   - .sirseer-harvest.yml (current directory)
//   - ~/.sirseer/harvest.yaml
//
// A .env file in the current directory, if present, is loaded into the
// environment first (without overriding variables already set), matching
// the workflow of keeping the token out of shell history. Environment
// variables are applied last and win over file values.
func Load(configPath string) (*Config, error) {
	// Best effort: absence of a .env file is the common case.
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if configPath != "" {
		if err := loadConfigFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		defaultPaths := []string{
			".sirseer-harvest.yaml",
			".sirseer-harvest.yml",
			filepath.Join(os.Getenv("HOME"), ".sirseer", "harvest.yaml"),
		}
		for _, path := range defaultPaths {
			if _, err := os.Stat(path); err == nil {
				if err := loadConfigFile(path, cfg); err != nil {
					return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
				}
				break
			}
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// loadConfigFile reads and parses a YAML config file
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(cfg *Config) {
	if endpoint := os.Getenv("GITHUB_GRAPHQL_ENDPOINT"); endpoint != "" {
		cfg.GitHub.GraphQLEndpoint = endpoint
	}
	if repo := os.Getenv("SIRSEER_REPO"); repo != "" {
		cfg.Fetch.Repository = repo
	}
	if start := os.Getenv("SIRSEER_WINDOW_START"); start != "" {
		cfg.Fetch.WindowStart = start
	}
	if out := os.Getenv("SIRSEER_OUTPUT"); out != "" {
		cfg.Fetch.Output = out
	}
	if pageSize := os.Getenv("SIRSEER_PAGE_SIZE"); pageSize != "" {
		if size, err := strconv.Atoi(pageSize); err == nil && size > 0 {
			cfg.Fetch.PageSize = size
		}
	}
	if threshold := os.Getenv("SIRSEER_RATE_LIMIT_THRESHOLD"); threshold != "" {
		if n, err := strconv.Atoi(threshold); err == nil && n > 0 {
			cfg.RateLimit.Threshold = n
		}
	}
}

// Token returns the GitHub token from the configured environment variable.
func (c *Config) Token() string {
	env := c.GitHub.TokenEnv
	if env == "" {
		env = "GITHUB_TOKEN"
	}
	return os.Getenv(env)
}

// SplitRepository returns the owner and name components of the configured
// repository.
func (c *Config) SplitRepository() (owner, name string, err error) {
	parts := strings.Split(c.Fetch.Repository, "/")
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return "", "", fmt.Errorf("repository must be in <owner>/<name> format, got %q: %w",
			c.Fetch.Repository, harvesterrors.ErrInvalidConfig)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}

// Window returns the overall fetch window [start, now).
func (c *Config) Window(now time.Time) (timerange.Range, error) {
	start, err := parseWindowStart(c.Fetch.WindowStart)
	if err != nil {
		return timerange.Range{}, err
	}

	r, err := timerange.New(start, now.UTC().Truncate(time.Second))
	if err != nil {
		return timerange.Range{}, fmt.Errorf("window start %s is not in the past: %w",
			c.Fetch.WindowStart, harvesterrors.ErrInvalidConfig)
	}
	return r, nil
}

func parseWindowStart(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse window start %q (want RFC3339 or YYYY-MM-DD): %w",
		s, harvesterrors.ErrInvalidConfig)
}

// Validate checks if the configuration contains valid values. This should
// be called after loading configuration to catch invalid settings early,
// before any network call is made.
func (c *Config) Validate() error {
	if c.Token() == "" {
		return fmt.Errorf("GitHub token not found: set the %s environment variable: %w",
			c.GitHub.TokenEnv, harvesterrors.ErrInvalidToken)
	}
	if _, _, err := c.SplitRepository(); err != nil {
		return err
	}
	if _, err := parseWindowStart(c.Fetch.WindowStart); err != nil {
		return err
	}
	if c.Fetch.PageSize <= 0 || c.Fetch.PageSize > 100 {
		return fmt.Errorf("page size %d outside GitHub's 1..100 limit: %w",
			c.Fetch.PageSize, harvesterrors.ErrInvalidConfig)
	}
	if c.Fetch.ResultCap <= 0 {
		return fmt.Errorf("result cap must be positive, got %d: %w",
			c.Fetch.ResultCap, harvesterrors.ErrInvalidConfig)
	}
	if c.Fetch.Output == "" {
		return fmt.Errorf("output path cannot be empty: %w", harvesterrors.ErrInvalidConfig)
	}
	if c.GitHub.GraphQLEndpoint == "" {
		return fmt.Errorf("GitHub GraphQL endpoint cannot be empty: %w", harvesterrors.ErrInvalidConfig)
	}
	if c.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("retry max attempts must be positive, got %d: %w",
			c.Retry.MaxAttempts, harvesterrors.ErrInvalidConfig)
	}
	return nil
}
