// README: TTL eviction tests for the in-memory location cache.
package location

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"shuttle/internal/types"
)

func TestMemCacheExpiry(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	cache := NewMemCache(5*time.Minute, func() time.Time { return now })
	ctx := context.Background()
	driverID := uuid.New()

	fix := Fix{DriverID: driverID, Position: types.Point{Lat: 40.44, Lng: -79.99}, RecordedAt: now}
	if err := cache.Set(ctx, fix); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := cache.Get(ctx, driverID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Position != fix.Position {
		t.Fatalf("got %+v, want %+v", got.Position, fix.Position)
	}

	now = now.Add(6 * time.Minute)
	if _, err := cache.Get(ctx, driverID); err != ErrNotFound {
		t.Fatalf("expired fix: got %v, want ErrNotFound", err)
	}

	if _, err := cache.Get(ctx, uuid.New()); err != ErrNotFound {
		t.Fatalf("unknown driver: got %v, want ErrNotFound", err)
	}
}

func TestMemCacheOverwrite(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	cache := NewMemCache(5*time.Minute, func() time.Time { return now })
	ctx := context.Background()
	driverID := uuid.New()

	_ = cache.Set(ctx, Fix{DriverID: driverID, Position: types.Point{Lat: 1, Lng: 1}, RecordedAt: now})
	_ = cache.Set(ctx, Fix{DriverID: driverID, Position: types.Point{Lat: 2, Lng: 2}, RecordedAt: now})

	got, err := cache.Get(ctx, driverID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Position.Lat != 2 {
		t.Fatal("newer fix should win")
	}
}
