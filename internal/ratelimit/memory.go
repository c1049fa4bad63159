package ratelimit

import (
	"context"
	"sync"
	"time"

	limiter "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// Memory is an in-process Limiter used when no Redis instance is configured.
// Counts are per replica and reset with the process.
type Memory struct {
	store limiter.Store

	mu       sync.Mutex
	limiters map[rateKey]*limiter.Limiter
}

type rateKey struct {
	window time.Duration
	max    int
}

// NewMemory builds a Memory limiter with a fresh in-memory store.
func NewMemory() *Memory {
	return &Memory{
		store:    memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: "tiered-discount", CleanUpInterval: time.Minute}),
		limiters: map[rateKey]*limiter.Limiter{},
	}
}

// Allow registers an event for key under a fixed window of the given size.
func (m *Memory) Allow(ctx context.Context, key string, window time.Duration, limit int) (Decision, error) {
	if limit <= 0 || window <= 0 {
		return Decision{Allowed: true, Remaining: limit, ResetAt: time.Now().Add(window)}, nil
	}
	lctx, err := m.limiterFor(window, limit).Get(ctx, key)
	if err != nil {
		return Decision{ResetAt: time.Now().Add(window)}, err
	}
	return Decision{
		Allowed:   !lctx.Reached,
		Remaining: int(lctx.Remaining),
		ResetAt:   time.Unix(lctx.Reset, 0),
	}, nil
}

func (m *Memory) limiterFor(window time.Duration, limit int) *limiter.Limiter {
	k := rateKey{window: window, max: limit}
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.limiters[k]; ok {
		return l
	}
	l := limiter.New(m.store, limiter.Rate{Period: window, Limit: int64(limit)})
	m.limiters[k] = l
	return l
}
