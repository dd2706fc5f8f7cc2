package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/hospintel/hospintel_backend/internal/model"
)

const redisKeyPrefix = "hospintel:store:"

func redisKeyStore(store string) string { return redisKeyPrefix + store }

// addScript inserts a field only when absent and the hash is below quota.
// Returns 1 on insert, 0 on duplicate, -1 when the quota is reached.
var addScript = goredis.NewScript(`
local max = tonumber(ARGV[3])
if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 1 then
	return 0
end
if max > 0 and redis.call('HLEN', KEYS[1]) >= max then
	return -1
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
return 1
`)

// RedisBackend keeps one hash per store, field = record id, value = JSON.
type RedisBackend struct {
	rdb        goredis.UniversalClient
	maxRecords int
}

// NewRedisBackend uses rdb without taking ownership; Close leaves the client
// open for other users such as the session store.
func NewRedisBackend(rdb goredis.UniversalClient, maxRecords int) *RedisBackend {
	return &RedisBackend{rdb: rdb, maxRecords: maxRecords}
}

func (r *RedisBackend) GetAll(ctx context.Context, store string) ([]model.Record, error) {
	vals, err := r.rdb.HVals(ctx, redisKeyStore(store)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	out := make([]model.Record, 0, len(vals))
	for _, v := range vals {
		var rec model.Record
		if err := json.Unmarshal([]byte(v), &rec); err != nil {
			return nil, fmt.Errorf("failed to decode record: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *RedisBackend) Get(ctx context.Context, store, id string) (*model.Record, error) {
	v, err := r.rdb.HGet(ctx, redisKeyStore(store), id).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	var rec model.Record
	if err := json.Unmarshal([]byte(v), &rec); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return &rec, nil
}

func (r *RedisBackend) Add(ctx context.Context, store string, rec model.Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	res, err := addScript.Run(ctx, r.rdb, []string{redisKeyStore(store)}, rec.ID, string(body), r.maxRecords).Int()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	switch res {
	case 1:
		return nil
	case 0:
		return ErrDuplicate
	default:
		return ErrQuotaExceeded
	}
}

func (r *RedisBackend) Delete(ctx context.Context, store, id string) error {
	n, err := r.rdb.HDel(ctx, redisKeyStore(store), id).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RedisBackend) Close() error {
	return nil
}
