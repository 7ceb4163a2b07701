package cleaner

import (
	"context"
	"fmt"
	"strings"

	"dj-cleaner/core/identity"
	"dj-cleaner/core/reconcile"
	"dj-cleaner/core/storage"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ClientFunc creates an object storage client for the given parameters.
type ClientFunc func(cfg storage.Config) (storage.Client, error)

// StorageGateway lists and deletes DataJoint external objects through the MinIO client.
// It implements reconcile.StorageGateway.
//
// The identifier-to-path mapping is not scoped by location: every listing replaces it.
// List a location and delete from it before listing the next one.
type StorageGateway struct {
	newClient ClientFunc
	log       *zap.Logger

	cfg    *storage.Config
	client storage.Client
	paths  map[uuid.UUID]string
}

var _ reconcile.StorageGateway = (*StorageGateway)(nil)

// NewStorageGateway creates an unconfigured gateway. newClient is usually storage.NewClient.
func NewStorageGateway(newClient ClientFunc, log *zap.Logger) *StorageGateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &StorageGateway{newClient: newClient, log: log}
}

// Configure sets the connection parameters. The client is kept when the parameters
// are unchanged and recreated lazily otherwise.
func (g *StorageGateway) Configure(cfg storage.Config) {
	if g.cfg != nil && *g.cfg == cfg {
		return
	}
	g.client = nil
	g.cfg = &cfg
}

func (g *StorageGateway) conn() (storage.Client, error) {
	if g.cfg == nil {
		return nil, reconcile.ErrNotConfigured
	}
	if g.client == nil {
		client, err := g.newClient(*g.cfg)
		if err != nil {
			return nil, fmt.Errorf("%w: storage %s: %w", reconcile.ErrConnection, g.cfg.Endpoint, err)
		}
		g.client = client
	}
	return g.client, nil
}

// GetObjectIDs lists every object below "<prefix>/<schema>" in the bucket and returns
// their identifiers, remembering each object's path for DeleteObjects.
// Keys that merely share the schema name as a prefix (e.g. "<prefix>/<schema>_v2/...")
// belong to another schema and are skipped.
func (g *StorageGateway) GetObjectIDs(ctx context.Context, loc reconcile.StorageLocation) (identity.Set, error) {
	client, err := g.conn()
	if err != nil {
		return nil, err
	}

	// A failed listing must not leave an older mapping behind
	g.paths = nil

	// Stops the listing goroutine on early return
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	prefix := loc.ObjectPrefix()
	opts := minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}

	paths := make(map[uuid.UUID]string)
	ids := identity.NewSet()
	for obj := range client.ListObjects(ctx, loc.Bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("%w: bucket %s prefix %s: %w", reconcile.ErrListing, loc.Bucket, prefix, obj.Err)
		}

		if !strings.HasPrefix(strings.TrimPrefix(obj.Key, prefix), "/") {
			g.log.Debug("Skipping object outside schema", zap.String("key", obj.Key))
			continue
		}

		id, err := identity.FromPath(obj.Key)
		if err != nil {
			return nil, err
		}
		if prev, ok := paths[id]; ok {
			g.log.Warn("Identifier stored under multiple paths",
				zap.Stringer("id", id),
				zap.String("kept", obj.Key),
				zap.String("ignored", prev),
			)
		}
		paths[id] = obj.Key
		ids.Add(id)
	}

	g.paths = paths
	return ids, nil
}

// DeleteObjects removes the objects with the given identifiers in one batch request.
// Every identifier must come from the most recent listing; otherwise nothing is
// deleted and ErrUnknownIdentifier is returned.
func (g *StorageGateway) DeleteObjects(ctx context.Context, loc reconcile.StorageLocation, ids identity.Set) ([]reconcile.DeleteWarning, error) {
	client, err := g.conn()
	if err != nil {
		return nil, err
	}
	if ids.Len() == 0 {
		return nil, nil
	}

	byPath := make(map[string]uuid.UUID, ids.Len())
	objectsCh := make(chan minio.ObjectInfo, ids.Len())
	for _, id := range ids.Sorted() {
		path, ok := g.paths[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", reconcile.ErrUnknownIdentifier, id)
		}
		byPath[path] = id
		objectsCh <- minio.ObjectInfo{Key: path}
	}
	close(objectsCh)

	var warnings []reconcile.DeleteWarning
	for rerr := range client.RemoveObjects(ctx, loc.Bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		if rerr.Err == nil {
			continue
		}
		warnings = append(warnings, reconcile.DeleteWarning{
			ID:   byPath[rerr.ObjectName],
			Path: rerr.ObjectName,
			Err:  rerr.Err,
		})
	}

	return warnings, nil
}
