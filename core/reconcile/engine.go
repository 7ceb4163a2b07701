package reconcile

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Cleaner deletes objects from the object store that the database no longer references.
type Cleaner struct {
	db        DatabaseGateway
	store     StorageGateway
	presenter Presenter
	log       *zap.Logger
}

// NewCleaner creates a Cleaner. A nil presenter discards results; a nil logger is a no-op.
func NewCleaner(db DatabaseGateway, store StorageGateway, presenter Presenter, log *zap.Logger) *Cleaner {
	if presenter == nil {
		presenter = PresenterFunc(func(Result) {})
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Cleaner{db: db, store: store, presenter: presenter, log: log}
}

// Clean executes one cleaning run.
//
// The storage listing happens before the database query. An object attached by a
// concurrent writer between the two is seen as an orphan and deleted, so the cleaner
// must only run while nothing is attaching objects to the store.
//
// Any gateway error aborts the run before deletion.
func (c *Cleaner) Clean(ctx context.Context, req Request) (Result, error) {
	log := c.log
	if req.Run != "" {
		log = log.With(zap.String("run_name", req.Run))
	}

	c.db.Configure(req.Database)
	c.store.Configure(req.Storage)

	storageIDs, err := c.store.GetObjectIDs(ctx, req.StorageLocation)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list objects in %s/%s: %w",
			req.StorageLocation.Bucket, req.StorageLocation.ObjectPrefix(), err)
	}

	dbIDs, err := c.db.GetIDs(ctx, req.DatabaseLocation)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read identifiers from %s.%s: %w",
			req.DatabaseLocation.Schema, req.DatabaseLocation.TableName(), err)
	}

	orphans := storageIDs.Difference(dbIDs)

	log.Info("Reconciled external store",
		zap.Int("objects", storageIDs.Len()),
		zap.Int("referenced", dbIDs.Len()),
		zap.Int("orphans", orphans.Len()),
	)

	res := Result{
		Run:        req.Run,
		Found:      storageIDs.Len(),
		Referenced: dbIDs.Len(),
		Deleted:    orphans.Len(),
		DryRun:     req.DryRun,
	}

	if req.DryRun {
		for _, id := range orphans.Sorted() {
			log.Debug("Would delete object", zap.Stringer("id", id))
		}
	} else if orphans.Len() > 0 {
		warnings, err := c.store.DeleteObjects(ctx, req.StorageLocation, orphans)
		if err != nil {
			return Result{}, fmt.Errorf("failed to delete orphaned objects: %w", err)
		}
		for _, w := range warnings {
			log.Warn("Object deletion failed",
				zap.Stringer("id", w.ID),
				zap.String("path", w.Path),
				zap.Error(w.Err),
			)
		}
		res.Warnings = warnings
	}

	c.presenter.PresentClean(res)
	return res, nil
}
