package cache

import (
	"testing"
	"time"
)

func TestLRUCache_GetSet(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)

	c.Set("a", "1")
	if got, ok := c.Get("a"); !ok || got != "1" {
		t.Errorf("Get(a) = %q, %v, want 1, true", got, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) reported a hit")
	}

	c.Set("a", "2")
	if got, _ := c.Get("a"); got != "2" {
		t.Errorf("Get(a) after overwrite = %q, want 2", got)
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1", c.Size())
	}
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("Get(b) hit, want b evicted")
	}
	for _, k := range []string{"a", "c"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("Get(%s) missed, want kept", k)
		}
	}
}

func TestLRUCache_Expiry(t *testing.T) {
	c := NewLRUCache[int](10, 10*time.Millisecond)
	c.Set("a", 1)
	c.Set("b", 2)
	time.Sleep(25 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Error("Get(a) hit after TTL")
	}
	if removed := c.CleanExpired(); removed != 1 {
		t.Errorf("CleanExpired() = %d, want 1", removed)
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d, want 0", c.Size())
	}
}

func TestLRUCache_DeleteAndClear(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	c.Set("dashboard:2026-03", 1)
	c.Set("dashboard:2026-04", 2)

	c.Delete("dashboard:2026-03")
	if _, ok := c.Get("dashboard:2026-03"); ok {
		t.Error("Get() hit after Delete")
	}

	c.Clear()
	if c.Size() != 0 {
		t.Errorf("Size() after Clear = %d, want 0", c.Size())
	}
	c.Set("x", 3)
	if got, ok := c.Get("x"); !ok || got != 3 {
		t.Errorf("Get(x) after Clear = %d, %v, want 3, true", got, ok)
	}
}

func TestManager_StartStop(t *testing.T) {
	c := NewLRUCache[int](10, time.Millisecond)
	c.Set("a", 1)

	m := NewManager(nil)
	m.Register(c)
	m.StartCleanup(5 * time.Millisecond)

	deadline := time.Now().Add(time.Second)
	for c.Size() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	m.Stop()

	if c.Size() != 0 {
		t.Errorf("Size() = %d, want expired entry cleaned", c.Size())
	}
}

func TestLRUCache_Stats(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	c := NewLRUCache[int](1, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("a", 1)
	c.Get("a")
	c.Set("b", 2) // evicts a
	c.Get("a")
	now = now.Add(2 * time.Minute)
	c.Get("b") // expired

	want := Stats{Hits: 1, Misses: 2, Evictions: 1}
	if got := c.Stats(); got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}

	m := NewManager(nil)
	m.Register(c)
	m.Register(NewLRUCache[string](4, time.Minute))
	if got := m.Stats(); got != want {
		t.Errorf("Manager.Stats() = %+v, want %+v", got, want)
	}
}
