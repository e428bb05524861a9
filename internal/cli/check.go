package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vknys/ingot/internal/ui"
	"github.com/vknys/ingot/pkg/ingot"
)

var checkCmd = &cobra.Command{
	Use:   "check <config.yaml>",
	Short: "Validate a batch without touching remote content",
	Long: `Check runs the full validation pipeline and prints the validation
report, without mutating any remote state.

The check command:
1. Connects to the repository and fetches the field schema and taxonomy
2. Reads and cleans the input CSV
3. Normalizes every row against the remote field types
4. Resolves taxonomy references against the fetched snapshot
5. Verifies parent/child relationships, file references and remote IDs

Terms that a run would create on the fly are reported as warnings and
stand in under batch-local placeholder IDs, so reference checks still
work without creating anything.

Password Authentication:
  For security, the password is NOT accepted as a CLI flag. Set the
  $INGOT_PASSWORD environment variable, directly or via a .env file.

Examples:
  # Validate a create batch
  ingot check ./batches/spring_acquisitions.yaml

  # Validate with a different host than the config file names
  ingot check ./batches/spring_acquisitions.yaml --host https://staging.islandora.dev`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

var checkFlags batchFlagValues

func init() {
	rootCmd.AddCommand(checkCmd)
	registerBatchFlags(checkCmd, &checkFlags)
}

func runCheck(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)

	batchConfig, err := buildBatchConfig(args[0], checkFlags, verbose)
	if err != nil {
		return err
	}

	service := newBatchService(batchConfig, verbose)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\n[INTERRUPT] Received interrupt signal, cancelling check...")
		cancel()
	}()

	report, err := service.Check(ctx, batchConfig)
	ui.NewReportRenderer(os.Stdout).Render(report)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	if report != nil && !report.Pass() {
		return fmt.Errorf("batch is not ready to run: %w", ingot.ErrValidationFailed)
	}
	return nil
}
