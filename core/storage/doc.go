// Package storage provides an abstraction layer for the object store holding
// DataJoint external objects.
//
// It wraps the MinIO Go client, which speaks to both self-hosted MinIO and AWS S3.
//
// # Client Interface
//
// The Client interface is limited to the calls a cleaning run needs, which keeps it
// easy to mock in unit tests (see core/storage/mocks).
//
// # Operations
//
//   - BucketExists: Verifies access to the target bucket.
//   - ListObjects: Lists objects in a bucket (supports prefix/recursive).
//   - RemoveObjects: Deletes a batch of objects, reporting failures per object.
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	exists, err := client.BucketExists(ctx, "my-bucket")
package storage
