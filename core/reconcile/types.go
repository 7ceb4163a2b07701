package reconcile

import (
	"dj-cleaner/core/database"
	"dj-cleaner/core/storage"
)

// DatabaseLocation identifies an external store's side table.
type DatabaseLocation struct {
	// Schema is the MySQL database holding the side table.
	Schema string
	// Store is the external store name; the table is "~external_" + Store.
	Store string
}

// TableName returns the name of the store's side table.
func (l DatabaseLocation) TableName() string {
	return "~external_" + l.Store
}

// StorageLocation identifies where a schema's objects live in the object store.
type StorageLocation struct {
	// Schema is the DataJoint schema name.
	Schema string
	// Bucket is the bucket holding the objects.
	Bucket string
	// Prefix is the store location inside the bucket.
	Prefix string
}

// ObjectPrefix returns the key prefix under which the schema's objects are stored.
func (l StorageLocation) ObjectPrefix() string {
	return l.Prefix + "/" + l.Schema
}

// Request bundles everything one cleaning run needs.
type Request struct {
	// Run labels the run in logs and results.
	Run string
	// Database holds the connection parameters for the database gateway.
	Database database.Config
	// Storage holds the connection parameters for the storage gateway.
	Storage storage.Config
	// DatabaseLocation selects the side table to read.
	DatabaseLocation DatabaseLocation
	// StorageLocation selects the objects to list.
	StorageLocation StorageLocation
	// DryRun computes the orphans without deleting them.
	DryRun bool
}

// Result summarizes a finished cleaning run.
type Result struct {
	// Run is the label from the request.
	Run string
	// Found is the number of objects listed in the object store.
	Found int
	// Referenced is the number of identifiers recorded in the database.
	Referenced int
	// Deleted is the number of orphaned objects deletion was requested for.
	// In dry-run mode it is the number that would have been deleted.
	Deleted int
	// DryRun reports whether deletion was skipped.
	DryRun bool
	// Warnings lists objects the store failed to delete.
	Warnings []DeleteWarning
}
