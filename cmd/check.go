package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"dj-cleaner/core/database"
	"dj-cleaner/core/logger"
	"dj-cleaner/core/storage"
	"dj-cleaner/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var jsonCheck bool

// checkCmd runs the preflight checks without deleting anything.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that every configured run can be cleaned",
	Long: `Check each configured run without modifying anything: the schema must contain
the ~external_<store> table with a binary(16) hash column, and the bucket must exist.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&jsonCheck, "json", false, "Print the reports as JSON")

	RootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, l, err := loadRuntime()
	if err != nil {
		return err
	}
	defer l.Sync()

	svc := integrity.NewService(l)

	// One connection per distinct server
	conns := make(map[database.Config]*gorm.DB)
	defer func() {
		for _, db := range conns {
			_ = database.Close(db)
		}
	}()

	var reports []integrity.Report
	failed := 0

	for i, run := range cfg.CleaningRuns {
		rl := logger.WithRun(l, i, run.Label())

		resolved, err := cfg.Resolve(run)
		if err != nil {
			reports = append(reports, integrity.Report{Run: run.Label(), Problems: []string{err.Error()}})
			rl.Error("Invalid cleaning run", zap.Error(err))
			failed++
			continue
		}

		db, ok := conns[resolved.Database]
		if !ok {
			db, err = database.Connect(resolved.Database)
			if err != nil {
				reports = append(reports, integrity.Report{Run: run.Label(), Problems: []string{err.Error()}})
				rl.Error("Database connection failed", zap.Error(err))
				failed++
				continue
			}
			conns[resolved.Database] = db
		}

		client, err := storage.NewClient(resolved.Storage)
		if err != nil {
			reports = append(reports, integrity.Report{Run: run.Label(), Problems: []string{err.Error()}})
			rl.Error("Storage client creation failed", zap.Error(err))
			failed++
			continue
		}

		report := svc.CheckRun(ctx, db, client, resolved)
		reports = append(reports, report)

		if report.OK() {
			rl.Info("Run is ready for cleaning", zap.Bool("populated", report.Populated))
		} else {
			rl.Warn("Run has problems", zap.Strings("problems", report.Problems))
			failed++
		}
	}

	if jsonCheck {
		data, err := json.MarshalIndent(reports, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(os.Stdout, string(data))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d runs failed the check", failed, len(cfg.CleaningRuns))
	}
	return nil
}
