// Package reconcile implements the cleaning use case: it reconciles the identifiers
// recorded in a DataJoint external store's side table with the objects present in
// the object store and deletes the objects nobody references anymore.
//
// DataJoint leaves externally stored objects behind when the rows referencing them
// are deleted. A cleaning run removes them in one pass:
//
//  1. configure the database and storage gateways for the run,
//  2. list the object identifiers under <location>/<schema> in the bucket,
//  3. read the identifiers from <schema>.`~external_<store>`,
//  4. delete the objects whose identifiers are absent from the database,
//  5. report the result to the Presenter.
//
// # Gateways
//
// The backends are reached through two interfaces, DatabaseGateway and StorageGateway,
// implemented in feature/cleaner on top of GORM and the MinIO client. Both are
// configured per run and connect lazily.
//
// # Concurrent Writers
//
// Listing and querying are not atomic. An object attached between steps 2 and 3 is
// treated as an orphan and deleted. Run the cleaner only while no client is
// inserting into tables that use the store.
//
// # Failures
//
// Any gateway error aborts the run before deletion and is returned to the caller.
// Objects the store refuses to delete are reported as DeleteWarning values and do not
// fail the run. There are no retries and no journal; rerunning is safe since a second
// run over an unchanged store deletes nothing.
package reconcile
