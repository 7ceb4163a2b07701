// Package integrity provides preflight checks for cleaning runs.
//
// Unlike the 'cleaner' package, nothing here mutates a backend. The checks confirm
// that a run's configuration points at real infrastructure before any deletion is
// attempted.
//
// # Checks Provided
//
//   - External table: the schema contains `~external_<store>` with a binary(16) `hash` column.
//   - Bucket: the bucket exists; whether the schema prefix holds any object is reported.
//
// A missing table usually means a typo in the schema or store name. Cleaning such a
// run would fail at the query step, after the object store was already listed.
package integrity
