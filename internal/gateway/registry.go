package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	claimKeyPrefix = "voice:call:"
	claimTTL       = 2 * time.Hour
)

// CallRegistry enforces the one-handler-per-call rule. With Redis
// configured the claim is cluster-wide via SET NX so a vendor retrying
// a stream against another instance cannot spawn a second handler; the
// in-process map alone covers single-instance deployments and is kept
// even with Redis up so Release works after a Redis hiccup.
type CallRegistry struct {
	rdb   *redis.Client
	mu    sync.Mutex
	local map[string]struct{}
}

func NewCallRegistry(rdb *redis.Client) *CallRegistry {
	return &CallRegistry{
		rdb:   rdb,
		local: make(map[string]struct{}),
	}
}

// Claim reserves callID for this handler. Returns false when another
// handler (here or on another instance) already owns it.
func (r *CallRegistry) Claim(ctx context.Context, callID string) bool {
	r.mu.Lock()
	if _, taken := r.local[callID]; taken {
		r.mu.Unlock()
		return false
	}
	r.local[callID] = struct{}{}
	r.mu.Unlock()

	if r.rdb == nil {
		return true
	}

	ok, err := r.rdb.SetNX(ctx, claimKeyPrefix+callID, "1", claimTTL).Result()
	if err != nil {
		// Redis down: fall back to the local claim rather than
		// refusing the call.
		return true
	}
	if !ok {
		r.mu.Lock()
		delete(r.local, callID)
		r.mu.Unlock()
		return false
	}
	return true
}

func (r *CallRegistry) Release(ctx context.Context, callID string) {
	r.mu.Lock()
	delete(r.local, callID)
	r.mu.Unlock()

	if r.rdb != nil {
		r.rdb.Del(ctx, claimKeyPrefix+callID)
	}
}

// ActiveCount reports how many calls this instance currently owns.
func (r *CallRegistry) ActiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.local)
}
