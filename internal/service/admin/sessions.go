package admin

import (
	"context"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/hospintel/hospintel_backend/pkg/digest"
)

// SessionStore keeps issued admin tokens. Tokens are stored by digest only.
type SessionStore interface {
	// Save registers a token. A zero ttl means the session never expires.
	Save(ctx context.Context, token string, ttl time.Duration) error
	Valid(ctx context.Context, token string) (bool, error)
	Delete(ctx context.Context, token string) error
}

func redisKeySession(token string) string { return "hospintel:admin:session:" + digest.Hex(token) }

type MemorySessions struct {
	mu       sync.Mutex
	sessions map[string]time.Time // digest -> expiry, zero = none
	now      func() time.Time
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{sessions: make(map[string]time.Time), now: time.Now}
}

func (m *MemorySessions) Save(_ context.Context, token string, ttl time.Duration) error {
	var exp time.Time
	if ttl > 0 {
		exp = m.now().Add(ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[digest.Hex(token)] = exp
	return nil
}

func (m *MemorySessions) Valid(_ context.Context, token string) (bool, error) {
	key := digest.Hex(token)
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.sessions[key]
	if !ok {
		return false, nil
	}
	if !exp.IsZero() && !m.now().Before(exp) {
		delete(m.sessions, key)
		return false, nil
	}
	return true, nil
}

func (m *MemorySessions) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, digest.Hex(token))
	return nil
}

type RedisSessions struct {
	rdb goredis.UniversalClient
}

func NewRedisSessions(rdb goredis.UniversalClient) *RedisSessions {
	return &RedisSessions{rdb: rdb}
}

func (r *RedisSessions) Save(ctx context.Context, token string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := r.rdb.Set(ctx, redisKeySession(token), time.Now().UTC().Format(time.RFC3339), ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (r *RedisSessions) Valid(ctx context.Context, token string) (bool, error) {
	n, err := r.rdb.Exists(ctx, redisKeySession(token)).Result()
	if err != nil {
		return false, fmt.Errorf("lookup session: %w", err)
	}
	return n == 1, nil
}

func (r *RedisSessions) Delete(ctx context.Context, token string) error {
	if err := r.rdb.Del(ctx, redisKeySession(token)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
