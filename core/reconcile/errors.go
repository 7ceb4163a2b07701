package reconcile

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNotConfigured is returned when a gateway is queried before Configure was called.
	ErrNotConfigured = errors.New("gateway not configured")
	// ErrConnection is returned when a backend connection or client cannot be established.
	ErrConnection = errors.New("connection failure")
	// ErrQuery is returned when the database lookup fails.
	ErrQuery = errors.New("query failure")
	// ErrListing is returned when the object store listing fails.
	ErrListing = errors.New("listing failure")
	// ErrUnknownIdentifier is returned when deletion is requested for an identifier
	// that the most recent listing did not return.
	ErrUnknownIdentifier = errors.New("unknown identifier")
)

// DeleteWarning reports an object the store refused to delete.
// Warnings never fail a run.
type DeleteWarning struct {
	ID   uuid.UUID
	Path string
	Err  error
}

func (w DeleteWarning) Error() string {
	return fmt.Sprintf("failed to delete %s: %v", w.Path, w.Err)
}
