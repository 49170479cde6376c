package oauth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const DefaultStateTTL = 10 * time.Minute

// StateStore hands out one-time values that bind an authorization
// redirect to its callback.
type StateStore interface {
	Issue(ctx context.Context) (string, error)
	// Consume reports whether state was issued and not yet used or expired.
	Consume(ctx context.Context, state string) (bool, error)
}

// RedisStateStore keeps states in Redis so any instance can finish a
// handshake another one started.
type RedisStateStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStateStore(client *redis.Client, ttl time.Duration) *RedisStateStore {
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &RedisStateStore{client: client, ttl: ttl}
}

func (s *RedisStateStore) key(state string) string {
	return "oauth:state:" + state
}

func (s *RedisStateStore) Issue(ctx context.Context) (string, error) {
	state := uuid.NewString()
	ok, err := s.client.SetNX(ctx, s.key(state), 1, s.ttl).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.New("oauth state collision")
	}
	return state, nil
}

func (s *RedisStateStore) Consume(ctx context.Context, state string) (bool, error) {
	if state == "" {
		return false, nil
	}
	// GETDEL makes the lookup and removal one step.
	err := s.client.GetDel(ctx, s.key(state)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MemoryStateStore is the single-instance fallback when Redis is not
// configured.
type MemoryStateStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	states map[string]time.Time
	now    func() time.Time
}

func NewMemoryStateStore(ttl time.Duration) *MemoryStateStore {
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &MemoryStateStore{
		ttl:    ttl,
		states: make(map[string]time.Time),
		now:    time.Now,
	}
}

func (s *MemoryStateStore) Issue(_ context.Context) (string, error) {
	state := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, expiresAt := range s.states {
		if !now.Before(expiresAt) {
			delete(s.states, k)
		}
	}
	s.states[state] = now.Add(s.ttl)
	return state, nil
}

func (s *MemoryStateStore) Consume(_ context.Context, state string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt, ok := s.states[state]
	if !ok {
		return false, nil
	}
	delete(s.states, state)
	return s.now().Before(expiresAt), nil
}
