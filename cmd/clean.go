package cmd

import (
	"fmt"
	"os"

	"dj-cleaner/core/database"
	"dj-cleaner/core/reconcile"
	"dj-cleaner/core/storage"
	"dj-cleaner/feature/cleaner"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dryRunClean bool
	summaryFlag bool
)

// cleanCmd deletes orphaned objects for every configured run.
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete external objects no longer referenced by the database",
	Long: `Run every configured cleaning run in order.

For each run the objects under <location>/<schema> in the bucket are listed,
the identifiers in <schema>.~external_<store> are read, and every object
without a matching row is deleted. A failing run is reported and the next
run still executes; the command exits non-zero if any run failed.

Do not run while clients are inserting into tables that use the store:
objects attached during a run can be mistaken for orphans.

Examples:
  # Clean with the default configuration file
  dj-cleaner clean

  # Report what would be deleted
  dj-cleaner clean --dry-run

  # Use another configuration file
  dj-cleaner clean -c /etc/dj-cleaner/config.toml`,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().BoolVar(&dryRunClean, "dry-run", false, "Report orphaned objects without deleting them")
	cleanCmd.Flags().BoolVar(&summaryFlag, "summary", true, "Print a summary table after all runs")

	RootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg, l, err := loadRuntime()
	if err != nil {
		return err
	}
	defer l.Sync()

	if len(cfg.CleaningRuns) == 0 {
		l.Warn("No cleaning runs configured", zap.String("config", configFile))
		return nil
	}

	l.Info("Starting cleaning", zap.Int("runs", len(cfg.CleaningRuns)), zap.Bool("dry_run", dryRunClean))

	dbGateway := cleaner.NewDatabaseGateway(database.Connect, l)
	defer dbGateway.Close()
	storeGateway := cleaner.NewStorageGateway(storage.NewClient, l)

	presenter := cleaner.NewConsolePresenter(os.Stdout)
	uc := reconcile.NewCleaner(dbGateway, storeGateway, presenter, l)

	outcomes, err := cleaner.NewController(uc, l, dryRunClean).RunAll(cmd.Context(), cfg)

	if summaryFlag {
		presenter.RenderSummary(outcomes)
	}

	if err != nil {
		return fmt.Errorf("cleaning finished with failures: %w", err)
	}
	return nil
}
