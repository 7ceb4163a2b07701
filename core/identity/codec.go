package identity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrMalformedIdentifier is returned when a value cannot be decoded into an identifier.
var ErrMalformedIdentifier = errors.New("malformed identifier")

// FromPath extracts the identifier from an object path.
// The final path segment is used with everything after its first "." removed.
func FromPath(path string) (uuid.UUID, error) {
	name := path
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "."); i >= 0 {
		name = name[:i]
	}

	// uuid.Parse also accepts urn and braced forms, which never appear as object names
	if len(name) != 32 && len(name) != 36 {
		return uuid.Nil, fmt.Errorf("%w: path %q", ErrMalformedIdentifier, path)
	}

	id, err := uuid.Parse(name)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: path %q: %v", ErrMalformedIdentifier, path, err)
	}
	return id, nil
}

// FromBytes interprets a raw 16-byte value as an identifier.
func FromBytes(b []byte) (uuid.UUID, error) {
	id, err := uuid.FromBytes(b)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: expected 16 bytes, got %d", ErrMalformedIdentifier, len(b))
	}
	return id, nil
}
