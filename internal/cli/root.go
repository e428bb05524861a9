// Package cli wires the command-line interface: config loading,
// credential resolution, dependency construction, and exit-code mapping.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ingot",
	Short: "CSV batch ingest for Islandora repositories",
	Long: `ingot plans and executes batches of repository operations described by a
CSV file and a YAML configuration: creating nodes and their media,
updating or deleting existing content, all through the repository's REST
API.

Every batch is validated against the remote field schema and taxonomy
before anything is written: the check command surfaces the full
validation report without mutating remote state, and the run command
refuses to start execution while any row still has an error.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Repository host unreachable
  12 - User denied delete approval
  13 - Remote operation failed during execution
  14 - Input CSV or directory not found
  15 - Batch failed validation; nothing was mutated`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("help", false, "Help for ingot")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
