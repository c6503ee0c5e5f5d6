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
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	harvesterrors "github.com/sirseerhq/sirseer-harvest/internal/errors"
	"github.com/sirseerhq/sirseer-harvest/pkg/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sirseer-harvest",
		Short: "Extract pull request metadata from a GitHub repository into CSV",
		Long: `SirSeer Harvest extracts pull-request metadata from a GitHub repository
through the GraphQL API and streams it to a CSV file. It works around
GitHub Search's 1000-result cap by recursively bisecting the configured
time window until every sub-range fits, then paginating each sub-range.`,
		Version:       version.Version,
		SilenceUsage:  true, // Don't show usage on error
		SilenceErrors: true, // We'll handle error printing ourselves
	}

	rootCmd.AddCommand(newFetchCommand())
	rootCmd.AddCommand(newCheckCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(mapErrorToExitCode(err))
	}
}

// mapErrorToExitCode maps internal errors to appropriate exit codes
func mapErrorToExitCode(err error) int {
	if err == nil {
		return 0
	}

	if errors.Is(err, harvesterrors.ErrInvalidToken) ||
		errors.Is(err, harvesterrors.ErrRepoNotFound) ||
		errors.Is(err, harvesterrors.ErrRateLimit) ||
		errors.Is(err, harvesterrors.ErrInvalidConfig) {
		return 2 // Authentication/configuration errors
	}

	if errors.Is(err, harvesterrors.ErrNetworkFailure) {
		return 3 // Network errors
	}

	return 1 // General error, including failed ranges
}
