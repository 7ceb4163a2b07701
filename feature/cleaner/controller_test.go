package cleaner

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"testing"

	"dj-cleaner/core/config"
	"dj-cleaner/core/database"
	"dj-cleaner/core/reconcile"
	"dj-cleaner/core/storage"
	"dj-cleaner/core/storage/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

// recordingCleaner records requests and fails the runs listed in failFor.
type recordingCleaner struct {
	requests []reconcile.Request
	failFor  map[string]error
}

func (r *recordingCleaner) Clean(ctx context.Context, req reconcile.Request) (reconcile.Result, error) {
	r.requests = append(r.requests, req)
	if err, ok := r.failFor[req.Run]; ok {
		return reconcile.Result{}, err
	}
	return reconcile.Result{Run: req.Run, Deleted: 1, DryRun: req.DryRun}, nil
}

func run(name, dbServer, schema string) config.RunConfig {
	return config.RunConfig{
		Name:           name,
		DatabaseServer: dbServer,
		StorageServer:  "minio.main",
		Schema:         schema,
		Store:          "external",
		Bucket:         "my-bucket",
		Location:       "dj-store",
	}
}

func testConfig(runs ...config.RunConfig) *config.Config {
	return &config.Config{
		DatabaseServers: map[string]database.Config{
			"main": {Host: "db", Port: 3306, User: "root"},
		},
		StorageServers: map[string]map[string]storage.Config{
			"minio": {"main": {Endpoint: "minio:9000"}},
		},
		CleaningRuns: runs,
	}
}

func TestRunAll_BuildsRequests(t *testing.T) {
	rc := &recordingCleaner{}
	cfg := testConfig(run("first", "main", "my_schema"))

	outcomes, err := NewController(rc, nil, false).RunAll(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, 1, outcomes[0].Result.Deleted)

	require.Len(t, rc.requests, 1)
	req := rc.requests[0]
	assert.Equal(t, "first", req.Run)
	assert.Equal(t, "db", req.Database.Host)
	assert.Equal(t, "minio:9000", req.Storage.Endpoint)
	assert.Equal(t, reconcile.DatabaseLocation{Schema: "my_schema", Store: "external"}, req.DatabaseLocation)
	assert.Equal(t, reconcile.StorageLocation{Schema: "my_schema", Bucket: "my-bucket", Prefix: "dj-store"}, req.StorageLocation)
	assert.False(t, req.DryRun)
}

func TestRunAll_ContinuesAfterFailure(t *testing.T) {
	rc := &recordingCleaner{failFor: map[string]error{"second": reconcile.ErrQuery}}
	cfg := testConfig(
		run("first", "main", "a"),
		run("broken", "unknown", "b"),
		run("second", "main", "c"),
		run("third", "main", "d"),
	)

	core, logs := observer.New(zapcore.ErrorLevel)
	outcomes, err := NewController(rc, zap.New(core), false).RunAll(context.Background(), cfg)

	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalidRun)
	assert.ErrorIs(t, err, reconcile.ErrQuery)
	assert.Contains(t, err.Error(), "run 1 (broken)")
	assert.Contains(t, err.Error(), "run 2 (second)")

	// Every run was attempted, in order; the broken one never reached the use case
	require.Len(t, outcomes, 4)
	for i, o := range outcomes {
		assert.Equal(t, i, o.Index)
	}
	assert.NoError(t, outcomes[0].Err)
	assert.Error(t, outcomes[1].Err)
	assert.Error(t, outcomes[2].Err)
	assert.NoError(t, outcomes[3].Err)

	var ran []string
	for _, r := range rc.requests {
		ran = append(ran, r.Run)
	}
	assert.Equal(t, []string{"first", "second", "third"}, ran)

	failed := logs.FilterMessage("Cleaning run failed").All()
	require.Len(t, failed, 2)
	assert.Equal(t, int64(1), failed[0].ContextMap()["run"])
	assert.Equal(t, "broken", failed[0].ContextMap()["run_name"])
}

func TestRunAll_NoRuns(t *testing.T) {
	outcomes, err := NewController(&recordingCleaner{}, nil, false).RunAll(context.Background(), testConfig())
	assert.NoError(t, err)
	assert.Empty(t, outcomes)
}

func TestRunAll_DryRun(t *testing.T) {
	rc := &recordingCleaner{}
	_, err := NewController(rc, nil, true).RunAll(context.Background(), testConfig(run("", "main", "s")))
	require.NoError(t, err)
	require.Len(t, rc.requests, 1)
	assert.True(t, rc.requests[0].DryRun)
	assert.Equal(t, "s/external", rc.requests[0].Run)
}

// TestRunAll_EndToEnd drives the real use case and gateways against mocked backends.
func TestRunAll_EndToEnd(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	client := new(mocks.Client)
	client.On("ListObjects", mock.Anything, "my-bucket", listing("dj-store/my_schema")).
		Return(mocks.ObjectsChan(objectPath(a), objectPath(b), objectPath(c))).Once()

	var removed []string
	client.On("RemoveObjects", mock.Anything, "my-bucket", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { removed = args.Get(2).([]string) }).
		Return(mocks.RemoveErrorsChan()).Once()

	db, sqlMock := setupMockDB(t)
	sqlMock.ExpectQuery(regexp.QuoteMeta("SELECT `hash` FROM `my_schema`.`~external_external`")).
		WillReturnRows(sqlmock.NewRows([]string{"hash"}).AddRow(b[:]))

	dbGateway := NewDatabaseGateway(func(cfg database.Config) (*gorm.DB, error) { return db, nil }, nil)
	storeGateway := NewStorageGateway(func(cfg storage.Config) (storage.Client, error) { return client, nil }, nil)

	var out bytes.Buffer
	uc := reconcile.NewCleaner(dbGateway, storeGateway, NewConsolePresenter(&out), nil)

	outcomes, err := NewController(uc, nil, false).RunAll(context.Background(), testConfig(run("e2e", "main", "my_schema")))
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, 2, outcomes[0].Result.Deleted)
	assert.ElementsMatch(t, []string{objectPath(a), objectPath(c)}, removed)
	assert.Equal(t, "Deleted 2 objects from external storage.\n", out.String())

	assert.NoError(t, sqlMock.ExpectationsWereMet())
	client.AssertExpectations(t)
}

func TestRunAll_UseCaseErrorIsWrapped(t *testing.T) {
	rc := &recordingCleaner{failFor: map[string]error{"x": errors.New("boom")}}
	_, err := NewController(rc, nil, false).RunAll(context.Background(), testConfig(run("x", "main", "s")))
	assert.EqualError(t, err, "run 0 (x): boom")
}
