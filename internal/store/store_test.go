package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hospintel/hospintel_backend/config"
	"github.com/hospintel/hospintel_backend/internal/model"
	"github.com/hospintel/hospintel_backend/pkg/database"
)

func newRecord(t *testing.T) model.Record {
	t.Helper()
	return model.NewRecord(uuid.NewString(), &model.DemoRequest{
		FullName:     "Jane Doe",
		Organization: "Lagos General",
		Email:        "jane@lagosgeneral.org",
		Beds:         "500",
	}, "request_demo", time.Now())
}

func openSQLite(t *testing.T, maxRecords int) Backend {
	t.Helper()
	b, err := Open(context.Background(), config.StorageConfig{
		Driver:             "sqlite",
		MaxRecordsPerStore: maxRecords,
		SQLite:             config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "leads.db")},
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func openRedis(t *testing.T, maxRecords int) Backend {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisBackend(rdb, maxRecords)
}

func backends(t *testing.T, maxRecords int) map[string]Backend {
	return map[string]Backend{
		"memory": NewMemoryBackend(maxRecords),
		"sqlite": openSQLite(t, maxRecords),
		"redis":  openRedis(t, maxRecords),
	}
}

func TestBackend_AddGetAllDelete(t *testing.T) {
	for name, b := range backends(t, 0) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			r1, r2 := newRecord(t), newRecord(t)
			require.NoError(t, b.Add(ctx, "leads", r1))
			require.NoError(t, b.Add(ctx, "leads", r2))

			all, err := b.GetAll(ctx, "leads")
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.ElementsMatch(t, []string{r1.ID, r2.ID}, []string{all[0].ID, all[1].ID})

			got, err := b.Get(ctx, "leads", r1.ID)
			require.NoError(t, err)
			assert.Equal(t, "Jane Doe", got.Demo.FullName)
			assert.Equal(t, model.StatusNew, got.Status)
			assert.True(t, r1.CreatedAt.Equal(got.CreatedAt))

			// stores are separate partitions
			other, err := b.GetAll(ctx, "inquiries")
			require.NoError(t, err)
			assert.Empty(t, other)

			require.NoError(t, b.Delete(ctx, "leads", r1.ID))
			_, err = b.Get(ctx, "leads", r1.ID)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, b.Delete(ctx, "leads", r1.ID), ErrNotFound)
		})
	}
}

func TestBackend_DuplicateID(t *testing.T) {
	for name, b := range backends(t, 0) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			r := newRecord(t)
			require.NoError(t, b.Add(ctx, "leads", r))
			assert.ErrorIs(t, b.Add(ctx, "leads", r), ErrDuplicate)

			// same id in another store is fine
			assert.NoError(t, b.Add(ctx, "inquiries", r))
		})
	}
}

func TestBackend_Quota(t *testing.T) {
	for name, b := range backends(t, 2) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			first := newRecord(t)
			require.NoError(t, b.Add(ctx, "leads", first))
			require.NoError(t, b.Add(ctx, "leads", newRecord(t)))
			assert.ErrorIs(t, b.Add(ctx, "leads", newRecord(t)), ErrQuotaExceeded)

			// a known id is a duplicate even when the store is full
			assert.ErrorIs(t, b.Add(ctx, "leads", first), ErrDuplicate)

			all, err := b.GetAll(ctx, "leads")
			require.NoError(t, err)
			assert.Len(t, all, 2)

			// deleting frees a slot
			require.NoError(t, b.Delete(ctx, "leads", first.ID))
			assert.NoError(t, b.Add(ctx, "leads", newRecord(t)))
		})
	}
}

func TestBackend_ConcurrentAdds(t *testing.T) {
	for name, b := range backends(t, 0) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					assert.NoError(t, b.Add(ctx, "leads", newRecord(t)))
				}()
			}
			wg.Wait()

			all, err := b.GetAll(ctx, "leads")
			require.NoError(t, err)
			assert.Len(t, all, 20)
		})
	}
}

type failingBackend struct {
	err error
}

func (f failingBackend) GetAll(context.Context, string) ([]model.Record, error) { return nil, f.err }
func (f failingBackend) Get(context.Context, string, string) (*model.Record, error) {
	return nil, f.err
}
func (f failingBackend) Add(context.Context, string, model.Record) error { return f.err }
func (f failingBackend) Delete(context.Context, string, string) error    { return f.err }
func (f failingBackend) Close() error                                    { return nil }

func TestAdapter_GetAllSwallowsErrors(t *testing.T) {
	a := NewAdapter(failingBackend{err: errors.New("disk on fire")}, nil)
	recs := a.GetAll(context.Background(), "leads")
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestAdapter_GetAllUnknownStore(t *testing.T) {
	a := NewAdapter(NewMemoryBackend(0), nil)
	assert.Empty(t, a.GetAll(context.Background(), "sessions"))
}

func TestAdapter_ErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		backend error
		want    error
	}{
		{"duplicate kept", ErrDuplicate, ErrDuplicate},
		{"quota kept", fmt.Errorf("wrapped: %w", ErrQuotaExceeded), ErrQuotaExceeded},
		{"unknown becomes unavailable", errors.New("connection refused"), ErrUnavailable},
		{"deadline becomes unavailable", context.DeadlineExceeded, ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAdapter(failingBackend{err: tt.backend}, nil)
			err := a.Add(context.Background(), "leads", newRecord(t))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAdapter_DeleteAbsentIsNoop(t *testing.T) {
	a := NewAdapter(NewMemoryBackend(0), nil)
	assert.NoError(t, a.Delete(context.Background(), "leads", "missing"))
}

func TestAdapter_RejectsUnknownStore(t *testing.T) {
	a := NewAdapter(NewMemoryBackend(0), nil)
	ctx := context.Background()
	assert.ErrorIs(t, a.Add(ctx, "cache", newRecord(t)), ErrUnknownStore)
	assert.ErrorIs(t, a.Delete(ctx, "cache", "x"), ErrUnknownStore)
	_, err := a.Get(ctx, "cache", "x")
	assert.ErrorIs(t, err, ErrUnknownStore)
}

func TestAdapter_ClosedBackendIsUnavailable(t *testing.T) {
	b := NewMemoryBackend(0)
	a := NewAdapter(b, nil)
	require.NoError(t, a.Close())

	assert.ErrorIs(t, a.Add(context.Background(), "leads", newRecord(t)), ErrUnavailable)
	assert.Empty(t, a.GetAll(context.Background(), "leads"))
}

func TestSQLBackend_Rebind(t *testing.T) {
	pg := &SQLBackend{dialect: database.DialectPostgres}
	assert.Equal(t, "SELECT 1 WHERE a = $1 AND b = $2", pg.rebind("SELECT 1 WHERE a = ? AND b = ?"))

	lite := &SQLBackend{dialect: database.DialectSQLite}
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.StorageConfig{Driver: "indexeddb"}, nil)
	assert.Error(t, err)

	_, err = Open(context.Background(), config.StorageConfig{Driver: "redis"}, nil)
	assert.Error(t, err)
}

func TestOpen_RedisSharesClient(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	ctx := context.Background()

	b, err := Open(ctx, config.StorageConfig{Driver: "redis", MaxRecordsPerStore: 5}, rdb)
	require.NoError(t, err)

	r := newRecord(t)
	require.NoError(t, b.Add(ctx, "leads", r))
	assert.True(t, mr.Exists("hospintel:store:leads"))
	fields, err := mr.HKeys("hospintel:store:leads")
	require.NoError(t, err)
	assert.Equal(t, []string{r.ID}, fields)

	// closing the backend leaves the shared client usable
	require.NoError(t, b.Close())
	require.NoError(t, rdb.Ping(ctx).Err())
}

func TestRedisBackend_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	b := NewRedisBackend(rdb, 0)
	mr.Close()

	ctx := context.Background()
	assert.ErrorIs(t, b.Add(ctx, "leads", newRecord(t)), ErrUnavailable)
	_, err := b.GetAll(ctx, "leads")
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = b.Get(ctx, "leads", "x")
	assert.ErrorIs(t, err, ErrUnavailable)
}
