package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vknys/ingot/internal/config"
	"github.com/vknys/ingot/internal/filesystem"
	"github.com/vknys/ingot/internal/logging"
	"github.com/vknys/ingot/internal/services"
	"github.com/vknys/ingot/internal/ui"
	"github.com/vknys/ingot/pkg/ingot"
)

// passwordEnvVar is the environment variable holding the repository
// password. The password is never accepted as a CLI flag: flags leak
// into shell history and process listings.
const passwordEnvVar = "INGOT_PASSWORD"

// batchFlagValues holds the per-command flag overrides shared by check
// and run.
type batchFlagValues struct {
	host     string
	username string
	inputDir string
	inputCSV string
	force    bool
}

// registerBatchFlags registers the flags shared by check and run.
func registerBatchFlags(cmd *cobra.Command, flags *batchFlagValues) {
	cmd.Flags().StringVar(&flags.host, "host", "",
		"Repository base URL (overrides the config file)\n"+
			"Example: https://islandora.dev")
	cmd.Flags().StringVarP(&flags.username, "username", "u", "",
		"Repository user (overrides the config file)")
	cmd.Flags().StringVar(&flags.inputDir, "input-dir", "",
		"Directory containing the input CSV and files (overrides the config file)")
	cmd.Flags().StringVar(&flags.inputCSV, "input-csv", "",
		"Input CSV filename, relative to the input directory (overrides the config file)")
}

// buildBatchConfig loads the YAML config file, applies flag overrides,
// and resolves credentials from the environment.
func buildBatchConfig(configPath string, flags batchFlagValues, verbose bool) (ingot.BatchConfig, error) {
	_ = godotenv.Load()

	batchConfig, err := config.Load(configPath)
	if err != nil {
		return ingot.BatchConfig{}, fmt.Errorf("failed to load %s: %v: %w", configPath, err, ingot.ErrInvalidConfig)
	}

	if flags.host != "" {
		batchConfig.Host = flags.host
	}
	if flags.username != "" {
		batchConfig.Username = flags.username
	}
	if flags.inputDir != "" {
		batchConfig.InputDir = flags.inputDir
	}
	if flags.inputCSV != "" {
		batchConfig.InputCSV = flags.inputCSV
	}

	// Relative input directories resolve against the config file's
	// directory, so a batch stays runnable from anywhere.
	if batchConfig.InputDir == "" {
		batchConfig.InputDir = filepath.Dir(configPath)
	} else if !filepath.IsAbs(batchConfig.InputDir) {
		batchConfig.InputDir = filepath.Join(filepath.Dir(configPath), batchConfig.InputDir)
	}

	batchConfig.Password = os.Getenv(passwordEnvVar)
	batchConfig.Force = flags.force
	batchConfig.Verbose = verbose
	batchConfig.ApplyDefaults()

	if verbose {
		fmt.Fprintf(os.Stderr, "[VERBOSE] Batch configuration:\n")
		fmt.Fprintf(os.Stderr, "  Task: %s\n", batchConfig.Task)
		fmt.Fprintf(os.Stderr, "  Host: %s\n", batchConfig.Host)
		fmt.Fprintf(os.Stderr, "  User: %s\n", batchConfig.Username)
		fmt.Fprintf(os.Stderr, "  Content type: %s\n", batchConfig.ContentType)
		fmt.Fprintf(os.Stderr, "  Input dir: %s\n", batchConfig.InputDir)
		fmt.Fprintf(os.Stderr, "  Input CSV: %s\n", batchConfig.InputCSV)
	}

	return batchConfig, nil
}

// newBatchService constructs the service with its production
// collaborators.
func newBatchService(batchConfig ingot.BatchConfig, verbose bool) *services.BatchService {
	var approver ingot.Approver
	if batchConfig.Force {
		approver = ui.NewForcedApprover(verbose)
	} else {
		approver = ui.NewInteractiveApprover(verbose)
	}
	logger := logging.NewConsoleLogger(verbose)

	return services.NewBatchService(
		services.NewDrupalGateway,
		approver,
		logger,
		filesystem.NewOSFileSystem(),
	)
}
