// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock lets tests move time without sleeping.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

func newTestCache(ttl time.Duration, max int) (*Cache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := New(ttl, max)
	c.now = clock.Now
	return c, clock
}

func TestCacheBasicOperations(t *testing.T) {
	c, _ := newTestCache(time.Minute, 10)

	c.Set("key1", "value1")
	value, ok := c.Get("key1")
	if !ok || value != "value1" {
		t.Errorf("Get(key1) = %v, %v; want value1, true", value, ok)
	}

	if _, ok := c.Get("key2"); ok {
		t.Error("Get(key2) found a value that was never set")
	}
}

func TestCacheExpiration(t *testing.T) {
	c, clock := newTestCache(time.Minute, 10)

	c.Set("key1", "value1")
	c.SetWithTTL("key2", "value2", time.Hour)

	clock.Advance(59 * time.Second)
	if _, ok := c.Get("key1"); !ok {
		t.Error("key1 expired early")
	}

	clock.Advance(time.Second)
	if _, ok := c.Get("key1"); ok {
		t.Error("key1 still present at its expiry")
	}
	if _, ok := c.Get("key2"); !ok {
		t.Error("key2 with custom TTL expired early")
	}

	stats := c.GetStats()
	if stats.Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", stats.Evictions)
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	c, _ := newTestCache(time.Minute, 10)

	c.Set("key1", "value1")
	c.Set("key2", "value2")
	c.Set("key3", "value3")

	c.Delete("key1")
	c.Delete("missing")
	if _, ok := c.Get("key1"); ok {
		t.Error("key1 present after Delete")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() = %d after Clear, want 0", c.Len())
	}

	stats := c.GetStats()
	if stats.Evictions != 3 || stats.TotalKeys != 0 {
		t.Errorf("stats = %+v, want 3 evictions and 0 keys", stats)
	}
}

func TestCacheStats(t *testing.T) {
	c, _ := newTestCache(time.Minute, 10)

	if c.HitRate() != 0 {
		t.Errorf("HitRate() = %f before lookups, want 0", c.HitRate())
	}

	c.Set("key1", "value1")
	c.Get("key1") // hit
	c.Get("key2") // miss
	c.Get("key1") // hit

	stats := c.GetStats()
	if stats.Hits != 2 || stats.Misses != 1 || stats.TotalKeys != 1 {
		t.Errorf("stats = %+v", stats)
	}

	want := 200.0 / 3.0
	if got := c.HitRate(); got < want-0.01 || got > want+0.01 {
		t.Errorf("HitRate() = %f, want %f", got, want)
	}
}

func TestCacheCapacity(t *testing.T) {
	t.Run("purges expired entries first", func(t *testing.T) {
		c, clock := newTestCache(time.Minute, 2)

		c.SetWithTTL("short", 1, time.Second)
		c.Set("long", 2)
		clock.Advance(2 * time.Second)
		c.Set("new", 3)

		if c.Len() != 2 {
			t.Fatalf("Len() = %d, want 2", c.Len())
		}
		if _, ok := c.Get("long"); !ok {
			t.Error("unexpired entry was evicted")
		}
		if _, ok := c.Get("new"); !ok {
			t.Error("new entry missing")
		}
	})

	t.Run("evicts one entry when none expired", func(t *testing.T) {
		c, _ := newTestCache(time.Minute, 2)

		c.Set("a", 1)
		c.Set("b", 2)
		c.Set("c", 3)

		if c.Len() != 2 {
			t.Fatalf("Len() = %d, want 2", c.Len())
		}
		if _, ok := c.Get("c"); !ok {
			t.Error("new entry missing")
		}
	})

	t.Run("overwrite does not evict", func(t *testing.T) {
		c, _ := newTestCache(time.Minute, 2)

		c.Set("a", 1)
		c.Set("b", 2)
		c.Set("a", 10)

		if v, _ := c.Get("a"); v != 10 {
			t.Errorf("Get(a) = %v, want 10", v)
		}
		if _, ok := c.Get("b"); !ok {
			t.Error("overwrite evicted another entry")
		}
	})

	t.Run("non-positive size takes default", func(t *testing.T) {
		if c := New(time.Minute, 0); c.maxEntries != DefaultMaxEntries {
			t.Errorf("maxEntries = %d, want %d", c.maxEntries, DefaultMaxEntries)
		}
	})
}

func TestGenerateKey(t *testing.T) {
	type params struct {
		Method string
		K      int
		Run    int64
	}

	key1 := GenerateKey("recommendations", params{"hybrid", 10, 1})
	key2 := GenerateKey("recommendations", params{"hybrid", 10, 1})
	key3 := GenerateKey("recommendations", params{"hybrid", 10, 2})
	key4 := GenerateKey("other", params{"hybrid", 10, 1})

	if key1 != key2 {
		t.Error("equal params produced different keys")
	}
	if key1 == key3 {
		t.Error("different params produced the same key")
	}
	if key1 == key4 {
		t.Error("different methods produced the same key")
	}

	// Unmarshalable params fall back to fmt formatting
	if got := GenerateKey("m", make(chan int)); got == "" {
		t.Error("GenerateKey() returned empty key for unmarshalable params")
	}
}

func TestCacheConcurrency(t *testing.T) {
	c := New(time.Minute, 64)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("key-%d-%d", id, j%20)
				c.Set(key, j)
				c.Get(key)
				if j%10 == 0 {
					c.Delete(key)
				}
			}
		}(i)
	}
	wg.Wait()

	if c.Len() > 64 {
		t.Errorf("Len() = %d exceeds capacity 64", c.Len())
	}
}
