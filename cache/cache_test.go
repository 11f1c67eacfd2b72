package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestCache_SetAndGet(t *testing.T) {
	c := New(1 * time.Second)
	defer c.Close()

	c.Set("key1", "value1")

	val, found := c.Get("key1")
	if !found {
		t.Error("Expected to find key1")
	}
	if val != "value1" {
		t.Errorf("Expected value1, got %v", val)
	}
}

func TestCache_Expiration(t *testing.T) {
	c := New(100 * time.Millisecond)
	defer c.Close()

	c.Set("key1", "value1")

	// Should exist immediately
	_, found := c.Get("key1")
	if !found {
		t.Error("Expected to find key1 immediately")
	}

	// Wait for expiration
	time.Sleep(150 * time.Millisecond)

	_, found = c.Get("key1")
	if found {
		t.Error("Expected key1 to be expired")
	}
}

func TestCache_SetWithTTL(t *testing.T) {
	c := New(1 * time.Hour)
	defer c.Close()

	c.SetWithTTL("short", "value", 50*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	if _, found := c.Get("short"); found {
		t.Error("Expected custom TTL to expire the entry")
	}
}

func TestCache_Clear(t *testing.T) {
	c := New(1 * time.Second)
	defer c.Close()

	c.Set("key1", "value1")
	c.Clear("key1")

	_, found := c.Get("key1")
	if found {
		t.Error("Expected key1 to be cleared")
	}
}

func TestCache_CleanupRemovesExpired(t *testing.T) {
	c := newWithInterval(10*time.Millisecond, 20*time.Millisecond)
	defer c.Close()

	c.Set("key1", "value1")
	time.Sleep(100 * time.Millisecond)

	if _, ok := c.store.Load("key1"); ok {
		t.Error("Expected cleanup goroutine to remove expired entry")
	}
}

func TestCache_GetOrLoad(t *testing.T) {
	c := New(1 * time.Minute)
	defer c.Close()

	calls := 0
	load := func() (any, error) {
		calls++
		return []string{"esx-01", "esx-02"}, nil
	}

	for i := 0; i < 3; i++ {
		val, err := c.GetOrLoad("hosts", load)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(val.([]string)) != 2 {
			t.Errorf("Expected 2 hosts, got %v", val)
		}
	}
	if calls != 1 {
		t.Errorf("Expected a single load, got %d", calls)
	}
}

func TestCache_GetOrLoadErrorNotCached(t *testing.T) {
	c := New(1 * time.Minute)
	defer c.Close()

	boom := errors.New("vcenter unreachable")
	if _, err := c.GetOrLoad("hosts", func() (any, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Fatalf("Expected load error, got %v", err)
	}

	val, err := c.GetOrLoad("hosts", func() (any, error) { return "ok", nil })
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if val != "ok" {
		t.Errorf("Expected retry to load, got %v", val)
	}
}

func TestCache_GetOrLoadDeduplicatesConcurrentLoads(t *testing.T) {
	c := New(1 * time.Minute)
	defer c.Close()

	var calls atomic.Int32
	release := make(chan struct{})
	load := func() (any, error) {
		calls.Add(1)
		<-release
		return "shared", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.GetOrLoad("hosts", load); err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("Expected 1 load for concurrent callers, got %d", got)
	}
}

func TestCache_CloseIsIdempotent(t *testing.T) {
	c := New(1 * time.Second)
	c.Close()
	c.Close()
}

func TestCache_GetOrLoadWithTTL(t *testing.T) {
	c := New(1 * time.Hour)
	defer c.Close()

	loads := 0
	load := func() (any, error) {
		loads++
		return "hosts", nil
	}

	if _, err := c.GetOrLoadWithTTL("infra", 50*time.Millisecond, load); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := c.GetOrLoadWithTTL("infra", 50*time.Millisecond, load); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if loads != 1 {
		t.Errorf("Expected 1 load before expiry, got %d", loads)
	}

	time.Sleep(60 * time.Millisecond)

	if _, err := c.GetOrLoadWithTTL("infra", 50*time.Millisecond, load); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if loads != 2 {
		t.Errorf("Expected reload after custom TTL expiry, got %d loads", loads)
	}
}
