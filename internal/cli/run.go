package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vknys/ingot/internal/ui"
)

var runCmd = &cobra.Command{
	Use:   "run <config.yaml>",
	Short: "Validate and execute a batch",
	Long: `Run validates the batch and, when every row is clean, executes the
planned remote operations in dependency order.

The run command:
1. Performs the same validation as the check command
2. Aborts before any mutation if validation reports an error
3. Asks for confirmation before delete tasks (unless --force is used)
4. Creates parents before children, feeding new node IDs forward
5. Records created node IDs in the rollback CSV when one is configured

Execution is strictly sequential. Interrupting a run leaves already
created content intact; use the rollback CSV with a delete task to
undo a partial run.

Password Authentication:
  For security, the password is NOT accepted as a CLI flag. Set the
  $INGOT_PASSWORD environment variable, directly or via a .env file.

Examples:
  # Execute a create batch
  ingot run ./batches/spring_acquisitions.yaml

  # Delete without the interactive confirmation prompt
  ingot run ./batches/withdrawals.yaml --force`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

var runFlags batchFlagValues

func init() {
	rootCmd.AddCommand(runCmd)
	registerBatchFlags(runCmd, &runFlags)
	runCmd.Flags().BoolVar(&runFlags.force, "force", false,
		"Skip the interactive approval prompt for delete tasks\n"+
			"Only affects the confirmation dialog, not batch behavior\n"+
			"Intended for CI/CD pipelines")
}

func runRun(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)

	batchConfig, err := buildBatchConfig(args[0], runFlags, verbose)
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
		fmt.Fprintln(os.Stderr, "\n[INTERRUPT] Received interrupt signal, cancelling run...")
		cancel()
	}()

	report, err := service.Run(ctx, batchConfig)
	ui.NewReportRenderer(os.Stdout).Render(report)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}
	return nil
}
