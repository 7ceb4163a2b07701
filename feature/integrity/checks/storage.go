package checks

import (
	"context"
	"fmt"

	"dj-cleaner/core/storage"

	"github.com/minio/minio-go/v7"
)

// CheckBucket verifies that bucket exists and reports whether any object is stored
// below prefix.
func CheckBucket(ctx context.Context, client storage.Client, bucket, prefix string) (problems []string, populated bool, err error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return []string{fmt.Sprintf("bucket %s does not exist", bucket)}, false, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := minio.ListObjectsOptions{
		Prefix:    prefix + "/",
		Recursive: true,
		MaxKeys:   1,
	}
	for obj := range client.ListObjects(ctx, bucket, opts) {
		if obj.Err != nil {
			return nil, false, fmt.Errorf("failed to list %s/%s: %w", bucket, prefix, obj.Err)
		}
		populated = true
		break
	}

	return nil, populated, nil
}
