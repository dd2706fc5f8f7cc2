package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/hospintel/hospintel_backend/internal/model"
)

// DefaultReplayTTL is how long a remotely delivered record answers retries.
const DefaultReplayTTL = 24 * time.Hour

// Replays remembers records that were delivered remotely under an
// idempotency key. Locally stored records need no entry: the store itself
// answers their retries.
type Replays interface {
	Remember(ctx context.Context, rec model.Record) error
	// Lookup returns nil when the id is unknown or expired.
	Lookup(ctx context.Context, id string) (*model.Record, error)
}

type replayEntry struct {
	rec     model.Record
	expires time.Time
}

type MemoryReplays struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]replayEntry
	now     func() time.Time
}

func NewMemoryReplays(ttl time.Duration) *MemoryReplays {
	if ttl <= 0 {
		ttl = DefaultReplayTTL
	}
	return &MemoryReplays{ttl: ttl, entries: make(map[string]replayEntry), now: time.Now}
}

func (m *MemoryReplays) Remember(_ context.Context, rec model.Record) error {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, id)
		}
	}
	m.entries[rec.ID] = replayEntry{rec: rec, expires: now.Add(m.ttl)}
	return nil
}

func (m *MemoryReplays) Lookup(_ context.Context, id string) (*model.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, nil
	}
	if !m.now().Before(e.expires) {
		delete(m.entries, id)
		return nil, nil
	}
	rec := e.rec
	return &rec, nil
}

type RedisReplays struct {
	rdb goredis.UniversalClient
	ttl time.Duration
}

func NewRedisReplays(rdb goredis.UniversalClient, ttl time.Duration) *RedisReplays {
	if ttl <= 0 {
		ttl = DefaultReplayTTL
	}
	return &RedisReplays{rdb: rdb, ttl: ttl}
}

func redisKeyReplay(id string) string { return "hospintel:replay:" + id }

func (r *RedisReplays) Remember(ctx context.Context, rec model.Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode replay: %w", err)
	}
	if err := r.rdb.Set(ctx, redisKeyReplay(rec.ID), body, r.ttl).Err(); err != nil {
		return fmt.Errorf("store replay: %w", err)
	}
	return nil
}

func (r *RedisReplays) Lookup(ctx context.Context, id string) (*model.Record, error) {
	body, err := r.rdb.Get(ctx, redisKeyReplay(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup replay: %w", err)
	}
	var rec model.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("decode replay: %w", err)
	}
	return &rec, nil
}
