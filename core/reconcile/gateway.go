package reconcile

import (
	"context"

	"dj-cleaner/core/database"
	"dj-cleaner/core/identity"
	"dj-cleaner/core/storage"
)

// DatabaseGateway exposes the identifiers referenced by the database.
type DatabaseGateway interface {
	// Configure sets the connection parameters. The connection is opened lazily on
	// the next query and replaced if the parameters changed.
	Configure(cfg database.Config)

	// GetIDs returns the identifiers recorded in the location's side table.
	// Any undecodable value fails the whole call.
	GetIDs(ctx context.Context, loc DatabaseLocation) (identity.Set, error)
}

// StorageGateway exposes the identifiers present in the object store and deletes
// objects by identifier.
//
// Implementations remember the path of every object returned by the most recent
// GetObjectIDs call. DeleteObjects may only be called for identifiers from that
// listing, so each listing must be followed by the deletion for the same location
// before another location is listed.
type StorageGateway interface {
	// Configure sets the connection parameters. The client is created lazily on
	// the next call and replaced if the parameters changed.
	Configure(cfg storage.Config)

	// GetObjectIDs lists the objects under the location and returns their identifiers.
	GetObjectIDs(ctx context.Context, loc StorageLocation) (identity.Set, error)

	// DeleteObjects deletes the objects with the given identifiers in one batch.
	// Objects the store refuses to delete are returned as warnings, not as an error.
	DeleteObjects(ctx context.Context, loc StorageLocation, ids identity.Set) ([]DeleteWarning, error)
}

// Presenter receives the result of every successful cleaning run.
type Presenter interface {
	PresentClean(res Result)
}

// PresenterFunc adapts a function to the Presenter interface.
type PresenterFunc func(res Result)

// PresentClean calls f(res).
func (f PresenterFunc) PresentClean(res Result) {
	f(res)
}
