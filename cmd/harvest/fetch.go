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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sirseerhq/sirseer-harvest/internal/config"
	harvesterrors "github.com/sirseerhq/sirseer-harvest/internal/errors"
	"github.com/sirseerhq/sirseer-harvest/internal/github"
	"github.com/sirseerhq/sirseer-harvest/internal/harvest"
	"github.com/sirseerhq/sirseer-harvest/internal/output"
	"github.com/sirseerhq/sirseer-harvest/internal/ratelimit"
)

// fetchFlags collects the optional command-line overrides. Everything has
// an environment or config-file equivalent, so the command runs with no
// arguments at all.
type fetchFlags struct {
	configPath string
	repo       string
	since      string
	outputFile string
}

func newFetchCommand() *cobra.Command {
	var flags fetchFlags

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch pull request data from the configured repository",
		Long: `Fetch pull-request metadata from the configured GitHub repository and
write it to a CSV file.

Configuration comes from the environment (optionally via a .env file) and
an optional YAML config file; flags override both:

  GITHUB_TOKEN          GitHub personal access token (required)
  SIRSEER_REPO          target repository in <owner>/<name> format
  SIRSEER_WINDOW_START  start of the fetch window (RFC3339 or YYYY-MM-DD)
  SIRSEER_OUTPUT        output CSV path

The fetch window always ends at the current time. Interrupting the run
(Ctrl-C) stops new queries and leaves a valid partial CSV behind.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runFetch(ctx, flags)
		},
	}

	cmd.Flags().StringVar(&flags.configPath, "config", "", "Path to YAML config file")
	cmd.Flags().StringVar(&flags.repo, "repo", "", "Target repository in <owner>/<name> format (overrides SIRSEER_REPO)")
	cmd.Flags().StringVar(&flags.since, "since", "", "Fetch PRs created after this time (overrides SIRSEER_WINDOW_START)")
	cmd.Flags().StringVar(&flags.outputFile, "output", "", "Output CSV path (overrides SIRSEER_OUTPUT)")

	return cmd
}

// runFetch executes the fetch command
func runFetch(ctx context.Context, flags fetchFlags) error {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	if flags.repo != "" {
		cfg.Fetch.Repository = flags.repo
	}
	if flags.since != "" {
		cfg.Fetch.WindowStart = flags.since
	}
	if flags.outputFile != "" {
		cfg.Fetch.Output = flags.outputFile
	}

	// Fail fast on bad configuration before any network call or file write.
	if err := cfg.Validate(); err != nil {
		return err
	}

	owner, repo, err := cfg.SplitRepository()
	if err != nil {
		return err
	}

	window, err := cfg.Window(time.Now())
	if err != nil {
		return err
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	writer, err := output.NewFileWriter(cfg.Fetch.Output)
	if err != nil {
		return err
	}
	defer func() { _ = writer.Close() }()

	gate := ratelimit.NewGate(cfg.RateLimit.Threshold,
		time.Duration(cfg.RateLimit.BufferSeconds)*time.Second)

	client := github.NewRetryClient(
		github.NewGraphQLClient(cfg.Token(), cfg.GitHub.GraphQLEndpoint, gate),
		&github.RetryConfig{
			MaxAttempts:       cfg.Retry.MaxAttempts,
			InitialBackoff:    time.Second,
			MaxBackoff:        30 * time.Second,
			BackoffMultiplier: 2.0,
		})

	driver := harvest.New(client, writer, owner, repo, harvest.Options{
		ResultCap: cfg.Fetch.ResultCap,
		PageSize:  cfg.Fetch.PageSize,
		Logger:    logger,
	})

	logger.Info("starting fetch",
		zap.String("repository", cfg.Fetch.Repository),
		zap.Stringer("window", window),
		zap.String("output", cfg.Fetch.Output))

	summary, runErr := driver.Run(ctx, window)

	// Flush before reporting so the summary never claims rows the file
	// does not have.
	if err := writer.Close(); err != nil {
		return err
	}

	summary.Print(os.Stderr)

	if runErr != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("interrupted; partial output kept in %s", cfg.Fetch.Output)
		}
		return runErr
	}

	if !summary.Ok() {
		return fmt.Errorf("%d range(s) failed; re-run them individually with --since: %w",
			len(summary.Failed), harvesterrors.ErrRangesFailed)
	}

	fmt.Fprintf(os.Stderr, "Successfully wrote %d records to %s\n", summary.Records, cfg.Fetch.Output)
	return nil
}
