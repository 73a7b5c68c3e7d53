package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type review struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Score int    `json:"score"`
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return New(rdb, ""), mr, func() {
		_ = rdb.Close()
		mr.Close()
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	c, _, cleanup := newTestCache(t)
	defer cleanup()

	want := review{Slug: "pixel-9", Title: "Pixel 9 review", Score: 8}
	if err := c.Set(context.Background(), "review:pixel-9", want, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	var got review
	found, err := c.Get(context.Background(), "review:pixel-9", &got)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !found {
		t.Fatal("expected cache hit")
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestGetMissIsNotAnError(t *testing.T) {
	c, _, cleanup := newTestCache(t)
	defer cleanup()

	var got review
	found, err := c.Get(context.Background(), "review:absent", &got)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if found {
		t.Fatal("expected cache miss")
	}
}

func TestSetHonorsTTL(t *testing.T) {
	c, mr, cleanup := newTestCache(t)
	defer cleanup()

	if err := c.Set(context.Background(), "ephemeral", "value", 5*time.Second); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	mr.FastForward(6 * time.Second)

	var got string
	found, err := c.Get(context.Background(), "ephemeral", &got)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if found {
		t.Fatal("expected entry to expire")
	}
}

func TestDelete(t *testing.T) {
	c, _, cleanup := newTestCache(t)
	defer cleanup()

	if err := c.Set(context.Background(), "a", 1, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := c.Set(context.Background(), "b", 2, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if err := c.Delete(context.Background(), "a", "b"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	var got int
	found, err := c.Get(context.Background(), "a", &got)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if found {
		t.Fatal("deleted key must miss")
	}
}

func TestInvalidatePrefix(t *testing.T) {
	c, _, cleanup := newTestCache(t)
	defer cleanup()

	for _, key := range []string{"review:a", "review:b", "review:c", "user:1"} {
		if err := c.Set(context.Background(), key, key, time.Minute); err != nil {
			t.Fatalf("set failed: %v", err)
		}
	}

	removed, err := c.InvalidatePrefix(context.Background(), "review:")
	if err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removals, got %d", removed)
	}

	var got string
	found, err := c.Get(context.Background(), "user:1", &got)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !found {
		t.Fatal("keys outside the prefix must survive")
	}
}

func TestEmptyKeyRejected(t *testing.T) {
	c, _, cleanup := newTestCache(t)
	defer cleanup()

	if err := c.Set(context.Background(), "", 1, time.Minute); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
	var got int
	if _, err := c.Get(context.Background(), "", &got); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
	if _, err := c.InvalidatePrefix(context.Background(), ""); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

func TestStoreDownSurfacesError(t *testing.T) {
	c, mr, cleanup := newTestCache(t)
	defer cleanup()

	mr.Close()

	if err := c.Set(context.Background(), "k", 1, time.Minute); !errors.Is(err, ErrCacheUnavailable) {
		t.Fatalf("expected ErrCacheUnavailable, got %v", err)
	}
	var got int
	if _, err := c.Get(context.Background(), "k", &got); !errors.Is(err, ErrCacheUnavailable) {
		t.Fatalf("expected ErrCacheUnavailable, got %v", err)
	}
}
