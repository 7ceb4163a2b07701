// Package cleaner wires the cleaning use case to MySQL and MinIO and drives the
// configured runs.
//
// # Gateways
//
// DatabaseGateway reads the `hash` column of a schema's `~external_<store>` table
// through GORM. StorageGateway lists objects below "<location>/<schema>" with the
// MinIO client and deletes orphans with a single batched RemoveObjects call.
// Both start unconfigured, reject queries until Configure is called, and open their
// connection lazily on first use.
//
// StorageGateway remembers the path of every listed object so it can delete by
// identifier. The mapping is replaced by each listing and is not keyed by location,
// so a listing must be followed by the deletion for the same location.
//
// # Controller
//
// Controller resolves each configured run against the named servers and invokes the
// use case once per run, sequentially. A failing run does not stop the remaining
// runs; RunAll reports every failure once all runs were attempted.
//
// # Usage
//
//	dbGateway := cleaner.NewDatabaseGateway(database.Connect, log)
//	defer dbGateway.Close()
//	storeGateway := cleaner.NewStorageGateway(storage.NewClient, log)
//
//	presenter := cleaner.NewConsolePresenter(os.Stdout)
//	uc := reconcile.NewCleaner(dbGateway, storeGateway, presenter, log)
//
//	outcomes, err := cleaner.NewController(uc, log, false).RunAll(ctx, cfg)
//	presenter.RenderSummary(outcomes)
package cleaner
