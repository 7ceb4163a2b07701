package cmd

import (
	"fmt"
	"os"

	"dj-cleaner/core/config"
	"dj-cleaner/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configFile string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "dj-cleaner",
	Short: "Clean up DataJoint external stores",
	Long: `dj-cleaner deletes objects from DataJoint external stores (MinIO/S3)
that are no longer referenced by the store's table in the database.

DataJoint keeps externally stored objects when the rows referencing them are
deleted. Each configured cleaning run lists a schema's objects, compares them
with the schema's ~external_<store> table and deletes the orphans.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console logger with ISO8601 timestamps, independent of the loaded config
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configFile, "config-file", "c", config.DefaultFile, "Path to configuration file")
}

// loadRuntime loads the configuration and builds the logger for a command.
func loadRuntime() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, l, nil
}
