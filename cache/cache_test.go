package cache

import (
	"testing"
	"time"
)

func TestCache_GetSet(t *testing.T) {
	c := New[string](10, time.Hour, 0)
	defer c.Close()

	if _, ok := c.Get("missing"); ok {
		t.Error("Get on empty cache reported a hit")
	}

	c.Set("a", "alpha")
	got, ok := c.Get("a")
	if !ok || got != "alpha" {
		t.Errorf("Get(a) = %q, %v, want alpha, true", got, ok)
	}

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("Get after Delete reported a hit")
	}
}

func TestCache_Expiry(t *testing.T) {
	now := time.Unix(1000, 0)
	c := New[int](10, time.Minute, 0)
	defer c.Close()
	c.now = func() time.Time { return now }

	c.Set("k", 1)
	now = now.Add(30 * time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Error("entry expired before its ttl")
	}

	now = now.Add(time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Error("entry still served after its ttl")
	}

	c.prune()
	if n := c.Len(); n != 0 {
		t.Errorf("Len() after prune = %d, want 0", n)
	}
}

func TestCache_EvictsAtCapacity(t *testing.T) {
	c := New[int](2, 0, 0)
	defer c.Close()

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("a", 3) // overwrite must not evict
	if n := c.Len(); n != 2 {
		t.Fatalf("Len() after overwrite = %d, want 2", n)
	}

	c.Set("c", 4)
	if n := c.Len(); n != 2 {
		t.Errorf("Len() = %d, want 2", n)
	}
	if got, ok := c.Get("c"); !ok || got != 4 {
		t.Errorf("Get(c) = %d, %v, want 4, true", got, ok)
	}
}

func TestKey(t *testing.T) {
	if Key("a", "b") == Key("ab") {
		t.Error("Key should separate parts")
	}
	if Key("x", "y") != Key("x", "y") {
		t.Error("Key should be deterministic")
	}
}

func TestCache_CloseTwice(t *testing.T) {
	c := New[int](1, time.Minute, time.Millisecond)
	c.Close()
	c.Close()
}
