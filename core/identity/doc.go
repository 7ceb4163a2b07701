// Package identity converts between the representations of an externally stored
// object's identifier.
//
// DataJoint names every externally stored object by a UUID. The database side table
// records it as a raw 16-byte `hash` column, while the object store encodes it as the
// final segment of the object key, optionally followed by an extension
// (e.g. "dj-store/my_schema/ab/cd/abcd...ef.dat").
//
// # Usage
//
//	id, err := identity.FromPath("dj-store/my_schema/0f/1e/0f1e...c2.png")
//	id, err := identity.FromBytes(row.Hash)
//
//	orphans := storageIDs.Difference(dbIDs)
package identity
