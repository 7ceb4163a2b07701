package reconcile

import (
	"context"
	"errors"
	"testing"

	"dj-cleaner/core/database"
	"dj-cleaner/core/identity"
	"dj-cleaner/core/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// fakeDB is a DatabaseGateway backed by a fixed identifier set.
type fakeDB struct {
	ids        identity.Set
	err        error
	configured []database.Config
	calls      *[]string
	queried    bool
}

func (f *fakeDB) record(call string) {
	if f.calls != nil {
		*f.calls = append(*f.calls, call)
	}
}

func (f *fakeDB) Configure(cfg database.Config) {
	f.configured = append(f.configured, cfg)
	f.record("db.configure")
}

func (f *fakeDB) GetIDs(ctx context.Context, loc DatabaseLocation) (identity.Set, error) {
	f.record("db.get_ids")
	f.queried = true
	if f.err != nil {
		return nil, f.err
	}
	return f.ids, nil
}

// fakeStore is a StorageGateway over an in-memory object set. Deleted objects
// disappear from later listings.
type fakeStore struct {
	objects    identity.Set
	listErr    error
	deleteErr  error
	warnFor    identity.Set
	deleted    []identity.Set
	configured []storage.Config
	calls      *[]string
}

func (f *fakeStore) record(call string) {
	if f.calls != nil {
		*f.calls = append(*f.calls, call)
	}
}

func (f *fakeStore) Configure(cfg storage.Config) {
	f.configured = append(f.configured, cfg)
	f.record("store.configure")
}

func (f *fakeStore) GetObjectIDs(ctx context.Context, loc StorageLocation) (identity.Set, error) {
	f.record("store.get_object_ids")
	if f.listErr != nil {
		return nil, f.listErr
	}
	listed := identity.NewSet()
	for id := range f.objects {
		listed.Add(id)
	}
	return listed, nil
}

func (f *fakeStore) DeleteObjects(ctx context.Context, loc StorageLocation, ids identity.Set) ([]DeleteWarning, error) {
	f.record("store.delete_objects")
	f.deleted = append(f.deleted, ids)
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	var warnings []DeleteWarning
	for id := range ids {
		if f.warnFor.Has(id) {
			warnings = append(warnings, DeleteWarning{ID: id, Path: "store/schema/" + id.String(), Err: errors.New("access denied")})
			continue
		}
		delete(f.objects, id)
	}
	return warnings, nil
}

func newRequest() Request {
	return Request{
		Run:              "test",
		Database:         database.Config{Host: "db"},
		Storage:          storage.Config{Endpoint: "minio:9000"},
		DatabaseLocation: DatabaseLocation{Schema: "my_schema", Store: "external"},
		StorageLocation:  StorageLocation{Schema: "my_schema", Bucket: "my-bucket", Prefix: "dj-store"},
	}
}

func TestClean_DeletesOrphans(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	db := &fakeDB{ids: identity.NewSet(b)}
	store := &fakeStore{objects: identity.NewSet(a, b, c)}

	var presented []Result
	cleaner := NewCleaner(db, store, PresenterFunc(func(r Result) { presented = append(presented, r) }), nil)

	res, err := cleaner.Clean(context.Background(), newRequest())
	require.NoError(t, err)

	require.Len(t, store.deleted, 1)
	assert.Equal(t, identity.NewSet(a, c), store.deleted[0])
	assert.Equal(t, 2, res.Deleted)
	assert.Equal(t, 3, res.Found)
	assert.Equal(t, 1, res.Referenced)
	assert.Equal(t, "test", res.Run)

	require.Len(t, presented, 1)
	assert.Equal(t, res, presented[0])

	assert.Equal(t, []database.Config{{Host: "db"}}, db.configured)
	assert.Equal(t, []storage.Config{{Endpoint: "minio:9000"}}, store.configured)
}

func TestClean_CallOrder(t *testing.T) {
	var calls []string
	db := &fakeDB{ids: identity.NewSet(), calls: &calls}
	store := &fakeStore{objects: identity.NewSet(uuid.New()), calls: &calls}

	cleaner := NewCleaner(db, store, nil, nil)
	_, err := cleaner.Clean(context.Background(), newRequest())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"db.configure",
		"store.configure",
		"store.get_object_ids",
		"db.get_ids",
		"store.delete_objects",
	}, calls)
}

func TestClean_SetDifferenceProperty(t *testing.T) {
	ids := make([]uuid.UUID, 8)
	for i := range ids {
		ids[i] = uuid.New()
	}

	// Each case selects storage and database members by bitmask over ids.
	masks := [][2]uint8{
		{0x00, 0x00},
		{0xff, 0x00},
		{0x00, 0xff},
		{0xff, 0xff},
		{0x0f, 0xf0},
		{0xaa, 0x55},
		{0xab, 0x0a},
		{0x31, 0x13},
	}

	pick := func(mask uint8) identity.Set {
		s := identity.NewSet()
		for i, id := range ids {
			if mask&(1<<i) != 0 {
				s.Add(id)
			}
		}
		return s
	}

	for _, m := range masks {
		storageIDs, dbIDs := pick(m[0]), pick(m[1])
		want := storageIDs.Difference(dbIDs)

		store := &fakeStore{objects: pick(m[0])}
		cleaner := NewCleaner(&fakeDB{ids: dbIDs}, store, nil, nil)

		res, err := cleaner.Clean(context.Background(), newRequest())
		require.NoError(t, err)
		assert.Equal(t, want.Len(), res.Deleted, "masks %x/%x", m[0], m[1])

		if want.Len() == 0 {
			assert.Empty(t, store.deleted, "no delete call for an empty difference")
			continue
		}
		require.Len(t, store.deleted, 1)
		assert.Equal(t, want, store.deleted[0])
	}
}

func TestClean_Idempotent(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	store := &fakeStore{objects: identity.NewSet(a, b, c)}
	cleaner := NewCleaner(&fakeDB{ids: identity.NewSet(b)}, store, nil, nil)

	first, err := cleaner.Clean(context.Background(), newRequest())
	require.NoError(t, err)
	assert.Equal(t, 2, first.Deleted)

	second, err := cleaner.Clean(context.Background(), newRequest())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Deleted)
	assert.Equal(t, identity.NewSet(b), store.objects)
}

func TestClean_QueryFailureSkipsDeletion(t *testing.T) {
	store := &fakeStore{objects: identity.NewSet(uuid.New())}
	db := &fakeDB{err: ErrQuery}

	presented := 0
	cleaner := NewCleaner(db, store, PresenterFunc(func(Result) { presented++ }), nil)

	_, err := cleaner.Clean(context.Background(), newRequest())
	assert.ErrorIs(t, err, ErrQuery)
	assert.Contains(t, err.Error(), "my_schema.~external_external")
	assert.Empty(t, store.deleted)
	assert.Zero(t, presented)
}

func TestClean_ListingFailureSkipsQueryAndDeletion(t *testing.T) {
	store := &fakeStore{listErr: ErrListing}
	db := &fakeDB{ids: identity.NewSet()}

	_, err := NewCleaner(db, store, nil, nil).Clean(context.Background(), newRequest())
	assert.ErrorIs(t, err, ErrListing)
	assert.False(t, db.queried)
	assert.Empty(t, store.deleted)
}

func TestClean_DeleteFailure(t *testing.T) {
	store := &fakeStore{objects: identity.NewSet(uuid.New()), deleteErr: ErrUnknownIdentifier}

	_, err := NewCleaner(&fakeDB{ids: identity.NewSet()}, store, nil, nil).Clean(context.Background(), newRequest())
	assert.ErrorIs(t, err, ErrUnknownIdentifier)
}

func TestClean_PerObjectWarningsAreNotFatal(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New()}
	store := &fakeStore{objects: identity.NewSet(ids...), warnFor: identity.NewSet(ids[2])}

	core, logs := observer.New(zapcore.WarnLevel)
	cleaner := NewCleaner(&fakeDB{ids: identity.NewSet()}, store, nil, zap.New(core))

	res, err := cleaner.Clean(context.Background(), newRequest())
	require.NoError(t, err)
	assert.Equal(t, 5, res.Deleted)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, ids[2], res.Warnings[0].ID)

	warned := logs.FilterMessage("Object deletion failed").All()
	require.Len(t, warned, 1)
	assert.Equal(t, ids[2].String(), warned[0].ContextMap()["id"])
}

func TestClean_DryRun(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	store := &fakeStore{objects: identity.NewSet(a, b)}

	req := newRequest()
	req.DryRun = true

	res, err := NewCleaner(&fakeDB{ids: identity.NewSet(a)}, store, nil, nil).Clean(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.DryRun)
	assert.Equal(t, 1, res.Deleted)
	assert.Empty(t, store.deleted)
	assert.Equal(t, 2, store.objects.Len())
}

func TestLocations(t *testing.T) {
	assert.Equal(t, "~external_external", DatabaseLocation{Schema: "s", Store: "external"}.TableName())
	assert.Equal(t, "dj-store/my_schema", StorageLocation{Schema: "my_schema", Bucket: "b", Prefix: "dj-store"}.ObjectPrefix())
}

func TestDeleteWarning_Error(t *testing.T) {
	w := DeleteWarning{Path: "dj-store/s/x.dat", Err: errors.New("denied")}
	assert.Equal(t, "failed to delete dj-store/s/x.dat: denied", w.Error())
}
