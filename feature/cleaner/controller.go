package cleaner

import (
	"context"
	"errors"
	"fmt"

	"dj-cleaner/core/config"
	"dj-cleaner/core/logger"
	"dj-cleaner/core/reconcile"

	"go.uber.org/zap"
)

// Cleaner executes a single cleaning run. *reconcile.Cleaner implements it.
type Cleaner interface {
	Clean(ctx context.Context, req reconcile.Request) (reconcile.Result, error)
}

// Outcome records how one configured run ended.
type Outcome struct {
	// Index is the run's position in the configuration.
	Index int
	// Run is the run as configured.
	Run config.RunConfig
	// Result is set when Err is nil.
	Result reconcile.Result
	// Err is the reason the run failed, if it did.
	Err error
}

// Controller executes the configured cleaning runs one after another.
//
// A failed run is logged and the remaining runs still execute; the failures are
// returned together once every run has been attempted.
type Controller struct {
	cleaner Cleaner
	log     *zap.Logger
	dryRun  bool
}

// NewController creates a Controller. With dryRun set, orphans are reported but not deleted.
func NewController(cleaner Cleaner, log *zap.Logger, dryRun bool) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{cleaner: cleaner, log: log, dryRun: dryRun}
}

// RunAll executes every run in cfg.CleaningRuns in order.
// The returned error joins the failures of all failed runs.
func (c *Controller) RunAll(ctx context.Context, cfg *config.Config) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(cfg.CleaningRuns))
	var errs []error

	for i, run := range cfg.CleaningRuns {
		l := logger.WithRun(c.log, i, run.Label())
		l.Info("Starting cleaning run",
			zap.String("schema", run.Schema),
			zap.String("store", run.Store),
			zap.String("bucket", run.Bucket),
			zap.Bool("dry_run", c.dryRun),
		)

		outcome := Outcome{Index: i, Run: run}
		outcome.Result, outcome.Err = c.runOne(ctx, cfg, run)
		outcomes = append(outcomes, outcome)

		if outcome.Err != nil {
			l.Error("Cleaning run failed", zap.Error(outcome.Err))
			errs = append(errs, fmt.Errorf("run %d (%s): %w", i, run.Label(), outcome.Err))
			continue
		}

		l.Info("Cleaning run finished",
			zap.Int("deleted", outcome.Result.Deleted),
			zap.Int("warnings", len(outcome.Result.Warnings)),
		)
	}

	return outcomes, errors.Join(errs...)
}

func (c *Controller) runOne(ctx context.Context, cfg *config.Config, run config.RunConfig) (reconcile.Result, error) {
	resolved, err := cfg.Resolve(run)
	if err != nil {
		return reconcile.Result{}, err
	}
	return c.cleaner.Clean(ctx, NewRequest(resolved, c.dryRun))
}

// NewRequest builds the use case request for a resolved run.
func NewRequest(run config.ResolvedRun, dryRun bool) reconcile.Request {
	return reconcile.Request{
		Run:      run.Label(),
		Database: run.Database,
		Storage:  run.Storage,
		DatabaseLocation: reconcile.DatabaseLocation{
			Schema: run.Schema,
			Store:  run.Store,
		},
		StorageLocation: reconcile.StorageLocation{
			Schema: run.Schema,
			Bucket: run.Bucket,
			Prefix: run.Location,
		},
		DryRun: dryRun,
	}
}
