// README: In-memory location cache with the same TTL eviction semantics.
package location

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type MemCache struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	fixes map[uuid.UUID]Fix
}

func NewMemCache(ttl time.Duration, now func() time.Time) *MemCache {
	if now == nil {
		now = time.Now
	}
	return &MemCache{ttl: ttl, now: now, fixes: make(map[uuid.UUID]Fix)}
}

func (c *MemCache) Set(ctx context.Context, fix Fix) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fixes[fix.DriverID] = fix
	return nil
}

func (c *MemCache) Get(ctx context.Context, driverID uuid.UUID) (*Fix, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fix, ok := c.fixes[driverID]
	if !ok || c.now().Sub(fix.RecordedAt) > c.ttl {
		delete(c.fixes, driverID)
		return nil, ErrNotFound
	}
	out := fix
	return &out, nil
}
