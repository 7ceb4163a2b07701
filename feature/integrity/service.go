package integrity

import (
	"context"

	"dj-cleaner/core/config"
	"dj-cleaner/core/reconcile"
	"dj-cleaner/core/storage"
	"dj-cleaner/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Report is the preflight result for one cleaning run.
type Report struct {
	// Run is the run label.
	Run string `json:"run"`
	// Problems lists everything that would make the run fail or misbehave.
	Problems []string `json:"problems"`
	// Populated reports whether any object exists under the run's schema prefix.
	Populated bool `json:"populated"`
}

// OK reports whether no problems were found.
func (r Report) OK() bool {
	return len(r.Problems) == 0
}

// Service runs preflight checks for cleaning runs.
type Service struct {
	logger *zap.Logger
}

// NewService creates a new integrity service.
func NewService(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger}
}

// CheckRun verifies that the run's side table and bucket are usable.
// Failures of the checks themselves are reported as problems too.
func (s *Service) CheckRun(ctx context.Context, db *gorm.DB, client storage.Client, run config.ResolvedRun) Report {
	report := Report{Run: run.Label()}

	tableProblems, err := checks.CheckExternalTable(ctx, db, run.Schema, run.Store)
	if err != nil {
		report.Problems = append(report.Problems, err.Error())
	}
	report.Problems = append(report.Problems, tableProblems...)

	prefix := reconcile.StorageLocation{Schema: run.Schema, Bucket: run.Bucket, Prefix: run.Location}.ObjectPrefix()
	bucketProblems, populated, err := checks.CheckBucket(ctx, client, run.Bucket, prefix)
	if err != nil {
		report.Problems = append(report.Problems, err.Error())
	}
	report.Problems = append(report.Problems, bucketProblems...)
	report.Populated = populated

	s.logger.Debug("Preflight check finished",
		zap.String("run_name", report.Run),
		zap.Int("problems", len(report.Problems)),
		zap.Bool("populated", populated),
	)

	return report
}
