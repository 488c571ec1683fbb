package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type cachedView struct {
	Period string `json:"period"`
	Total  int    `json:"total"`
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisCache_GetSet(t *testing.T) {
	mr, client := newTestRedis(t)
	c := NewRedisCache[cachedView](client, "fincontrol:views:", time.Minute, nil)

	if _, ok := c.Get("dashboard:2026-10"); ok {
		t.Error("Get() hit on empty cache")
	}

	want := cachedView{Period: "2026-10", Total: 42}
	c.Set("dashboard:2026-10", want)
	got, ok := c.Get("dashboard:2026-10")
	if !ok || got != want {
		t.Errorf("Get() = %+v, %v, want %+v, true", got, ok, want)
	}
	if !mr.Exists("fincontrol:views:dashboard:2026-10") {
		t.Error("value not stored under the prefix")
	}
	if ttl := mr.TTL("fincontrol:views:dashboard:2026-10"); ttl != time.Minute {
		t.Errorf("TTL = %v, want 1m", ttl)
	}

	mr.FastForward(2 * time.Minute)
	if _, ok := c.Get("dashboard:2026-10"); ok {
		t.Error("Get() hit after TTL")
	}
}

func TestRedisCache_UndecodableEntryIsMiss(t *testing.T) {
	mr, client := newTestRedis(t)
	c := NewRedisCache[cachedView](client, "p:", time.Minute, nil)

	if err := mr.Set("p:broken", "not json"); err != nil {
		t.Fatal(err)
	}
	if got, ok := c.Get("broken"); ok {
		t.Errorf("Get(broken) = %+v, true, want miss", got)
	}
}

func TestRedisCache_DeleteClearSize(t *testing.T) {
	mr, client := newTestRedis(t)
	views := NewRedisCache[cachedView](client, "fincontrol:views:", time.Minute, nil)
	drivers := NewRedisCache[int](client, "fincontrol:driver:", time.Minute, nil)

	views.Set("a", cachedView{Total: 1})
	views.Set("b", cachedView{Total: 2})
	views.Set("c", cachedView{Total: 3})
	drivers.Set("x", 7)

	if n := views.Size(); n != 3 {
		t.Errorf("Size() = %d, want 3", n)
	}

	views.Delete("a")
	if _, ok := views.Get("a"); ok {
		t.Error("Get(a) hit after Delete")
	}

	views.Clear()
	if n := views.Size(); n != 0 {
		t.Errorf("Size() after Clear = %d, want 0", n)
	}
	if got, ok := drivers.Get("x"); !ok || got != 7 {
		t.Errorf("Clear() touched another prefix: Get(x) = %d, %v", got, ok)
	}
	if !mr.Exists("fincontrol:driver:x") {
		t.Error("fincontrol:driver:x removed by Clear of another prefix")
	}
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	client, err := NewRedisClient(ctx, "redis://"+mr.Addr()+"/0")
	if err != nil {
		t.Fatalf("NewRedisClient() error = %v", err)
	}
	_ = client.Close()

	if _, err := NewRedisClient(ctx, "memcached://localhost"); err == nil {
		t.Error("NewRedisClient(bad scheme) error = nil, want error")
	}

	addr := mr.Addr()
	mr.Close()
	if _, err := NewRedisClient(ctx, "redis://"+addr); err == nil {
		t.Error("NewRedisClient(closed server) error = nil, want ping error")
	}
}
