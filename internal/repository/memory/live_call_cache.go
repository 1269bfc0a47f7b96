package memory

import (
	"time"

	"voice-intake-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

// LiveCallCache keeps in-flight call sessions hot so the per-event path
// does not round-trip the database on every frame. The gorm store stays
// the source of truth; this is read-through only.
type LiveCallCache struct {
	cache *cache.Cache
}

func NewLiveCallCache() *LiveCallCache {
	// Calls rarely exceed a few minutes; an hour TTL covers stuck
	// sessions, the janitor sweeps every 10 minutes.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &LiveCallCache{cache: c}
}

func (r *LiveCallCache) Save(session *entity.CallSession) {
	r.cache.Set(session.CallID, session, cache.DefaultExpiration)
}

func (r *LiveCallCache) Get(callID string) (*entity.CallSession, bool) {
	if x, found := r.cache.Get(callID); found {
		return x.(*entity.CallSession), true
	}
	return nil, false
}

func (r *LiveCallCache) Delete(callID string) {
	r.cache.Delete(callID)
}

// ActiveCallIDs lists the call ids currently cached, used by the drain
// path at shutdown.
func (r *LiveCallCache) ActiveCallIDs() []string {
	items := r.cache.Items()
	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	return ids
}

// TenantCache fronts tenant lookups; tenants change rarely and every
// setup event needs one.
type TenantCache struct {
	cache *cache.Cache
}

func NewTenantCache() *TenantCache {
	return &TenantCache{cache: cache.New(5*time.Minute, 10*time.Minute)}
}

func (r *TenantCache) Save(tenant *entity.Tenant) {
	r.cache.Set(tenant.Id, tenant, cache.DefaultExpiration)
}

func (r *TenantCache) Get(tenantID string) (*entity.Tenant, bool) {
	if x, found := r.cache.Get(tenantID); found {
		return x.(*entity.Tenant), true
	}
	return nil, false
}
