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
	"time"

	"github.com/spf13/cobra"

	"github.com/sirseerhq/sirseer-harvest/internal/config"
	harvesterrors "github.com/sirseerhq/sirseer-harvest/internal/errors"
	"github.com/sirseerhq/sirseer-harvest/internal/github"
	"github.com/sirseerhq/sirseer-harvest/internal/ratelimit"
)

func newCheckCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify that the token and GraphQL endpoint are reachable",
		Long: `Issue one minimal query to confirm that the configured credential and
endpoint work. Prints the authenticated login and the current rate-limit
budget. Never writes to the output file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			return runCheck(ctx, configPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to YAML config file")

	return cmd
}

func runCheck(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	token := cfg.Token()
	if token == "" {
		return fmt.Errorf("GitHub token not found: set the %s environment variable: %w",
			cfg.GitHub.TokenEnv, harvesterrors.ErrInvalidToken)
	}

	gate := ratelimit.NewGate(cfg.RateLimit.Threshold,
		time.Duration(cfg.RateLimit.BufferSeconds)*time.Second)
	client := github.NewGraphQLClient(token, cfg.GitHub.GraphQLEndpoint, gate)

	login, err := client.Viewer(ctx)
	if err != nil {
		return fmt.Errorf("connectivity check failed: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Successfully authenticated as %s\n", login)
	if state, ok := gate.Snapshot(); ok {
		fmt.Fprintf(os.Stdout, "Rate limit: %d/%d remaining, resets at %s\n",
			state.Remaining, state.Limit, state.ResetAt.Format(time.RFC3339))
	}
	return nil
}
