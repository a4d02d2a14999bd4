package cache

import (
	"strconv"
	"sync"
	"testing"
	"time"
)

func TestGet_Missing(t *testing.T) {
	c := New[string](10, 0)
	if _, ok := c.Get("absent"); ok {
		t.Fatal("expected miss for absent key")
	}
}

func TestPut_Get(t *testing.T) {
	c := New[string](10, 0)
	c.Put("a", "1")
	v, ok := c.Get("a")
	if !ok || v != "1" {
		t.Fatalf("expected hit with %q, got %q ok=%v", "1", v, ok)
	}
}

func TestPut_Overwrite(t *testing.T) {
	c := New[string](10, 0)
	c.Put("a", "1")
	c.Put("a", "2")
	if c.Len() != 1 {
		t.Fatalf("expected single entry, got %d", c.Len())
	}
	v, _ := c.Get("a")
	if v != "2" {
		t.Fatalf("expected overwritten value, got %q", v)
	}
}

func TestEviction_LeastRecentlyUsed(t *testing.T) {
	c := New[int](3, 0)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	// Touch "a" so "b" becomes the LRU entry.
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected hit for a")
	}

	c.Put("d", 4)

	if _, ok := c.Get("b"); ok {
		t.Error("expected b (least recently used) to be evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("expected %s to survive eviction", k)
		}
	}
}

func TestEviction_CapacityBound(t *testing.T) {
	c := New[int](5, 0)
	for i := 0; i < 20; i++ {
		c.Put("k"+strconv.Itoa(i), i)
	}
	if c.Len() != 5 {
		t.Fatalf("expected len 5, got %d", c.Len())
	}
}

func TestTTL_ExpiredOnGet(t *testing.T) {
	c := New[string](10, time.Hour)

	current := time.Unix(1000, 0)
	c.now = func() time.Time { return current }

	c.Put("a", "1")

	// Entry is most-recently-used yet still expires.
	current = current.Add(time.Hour + time.Second)
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected expired entry to be a miss")
	}
	if c.Len() != 0 {
		t.Fatalf("expected expired entry to be removed, len=%d", c.Len())
	}
}

func TestTTL_FreshEntrySurvives(t *testing.T) {
	c := New[string](10, time.Hour)

	current := time.Unix(1000, 0)
	c.now = func() time.Time { return current }

	c.Put("a", "1")
	current = current.Add(59 * time.Minute)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected entry within ttl to be a hit")
	}
}

func TestTTL_PutRefreshesTimestamp(t *testing.T) {
	c := New[string](10, time.Hour)

	current := time.Unix(1000, 0)
	c.now = func() time.Time { return current }

	c.Put("a", "1")
	current = current.Add(50 * time.Minute)
	c.Put("a", "2")
	current = current.Add(50 * time.Minute)

	// 100 minutes after the first put, 50 after the refresh.
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected refreshed entry to be a hit")
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New[int](100, 0)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := "k" + strconv.Itoa(i%50)
				c.Put(key, g)
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 100 {
		t.Fatalf("capacity exceeded under concurrency: %d", c.Len())
	}
}
