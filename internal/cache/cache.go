// Package cache stores immutable Analysis results keyed by the
// address:type fingerprint. Writes are last-writer-wins; a refresh replaces
// the entry wholesale.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"

	"tokensentry/internal/models"
)

// Store is the analysis cache interface.
type Store interface {
	Get(ctx context.Context, key string) (*models.Analysis, bool)
	Put(ctx context.Context, key string, analysis *models.Analysis, ttl time.Duration)
}

type memory struct {
	mu sync.Mutex
	m  map[string]entry
}

type entry struct {
	analysis *models.Analysis
	exp      time.Time
}

// NewMemory returns a process-local cache, used when Redis is not
// configured and as the test double.
func NewMemory() Store { return &memory{m: make(map[string]entry)} }

func (c *memory) Get(ctx context.Context, key string) (*models.Analysis, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.m[key]
	if !ok || (!e.exp.IsZero() && time.Now().After(e.exp)) {
		return nil, false
	}
	return e.analysis, true
}

func (c *memory) Put(ctx context.Context, key string, analysis *models.Analysis, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := entry{analysis: analysis}
	if ttl > 0 {
		e.exp = time.Now().Add(ttl)
	}
	c.m[key] = e
}

const redisPrefix = "tokensentry:analysis:"

type redisStore struct {
	r *redis.Client
}

// NewRedis returns a Redis-backed cache.
func NewRedis(addr string) Store {
	return &redisStore{r: redis.NewClient(&redis.Options{Addr: addr})}
}

// NewAuto picks Redis when an address is configured, memory otherwise.
func NewAuto(addr string) Store {
	if addr != "" {
		return NewRedis(addr)
	}
	return NewMemory()
}

func (s *redisStore) Get(ctx context.Context, key string) (*models.Analysis, bool) {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	raw, err := s.r.Get(ctx, redisPrefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	var analysis models.Analysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		return nil, false
	}
	return &analysis, true
}

func (s *redisStore) Put(ctx context.Context, key string, analysis *models.Analysis, ttl time.Duration) {
	raw, err := json.Marshal(analysis)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	_ = s.r.Set(ctx, redisPrefix+key, raw, ttl).Err()
}
