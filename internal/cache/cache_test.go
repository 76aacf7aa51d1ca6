package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "cache.json"))
}

func TestSetGet(t *testing.T) {
	c := newTestCache(t)

	if err := c.Set("weather_london", map[string]string{"description": "Cloudy"}, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var out map[string]string
	if !c.GetJSON("weather_london", &out) {
		t.Fatal("Expected cache hit")
	}
	if out["description"] != "Cloudy" {
		t.Errorf("Expected Cloudy, got %q", out["description"])
	}
}

func TestGetMiss(t *testing.T) {
	c := newTestCache(t)

	if _, found := c.Get("missing"); found {
		t.Error("Expected miss for absent key")
	}
}

func TestExpiredEntryEvictedOnAccess(t *testing.T) {
	c := newTestCache(t)

	if err := c.Set("news_us", []string{"headline"}, 10*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	if _, found := c.Get("news_us"); found {
		t.Fatal("Expected miss after TTL elapsed")
	}
	if c.Len() != 0 {
		t.Errorf("Expected expired entry evicted on access, %d entries remain", c.Len())
	}
}

func TestZeroTTLIsNoOp(t *testing.T) {
	c := newTestCache(t)

	if err := c.Set("wiki_python", "ignored", 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, found := c.Get("wiki_python"); found {
		t.Error("Zero TTL entry must never be observable")
	}
}

func TestOverwrite(t *testing.T) {
	c := newTestCache(t)

	c.Set("weather_paris", "old", time.Minute)
	c.Set("weather_paris", "new", time.Minute)

	var out string
	if !c.GetJSON("weather_paris", &out) || out != "new" {
		t.Errorf("Expected overwritten value, got %q", out)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	c := New(path)
	if err := c.Set("wiki_go", map[string]string{"title": "Go"}, time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c.Set("news_us", []string{"a", "b"}, 10*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	reloaded := New(path)

	var wiki map[string]string
	if !reloaded.GetJSON("wiki_go", &wiki) || wiki["title"] != "Go" {
		t.Errorf("Expected wiki_go to survive reload, got %v", wiki)
	}
	if _, found := reloaded.Get("news_us"); found {
		t.Error("Entry expired before reload must be dropped at load")
	}
}

func TestCorruptFileLoadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	c := New(path)
	if c.Len() != 0 {
		t.Errorf("Corrupt file should load as empty cache, got %d entries", c.Len())
	}
}

func TestDeleteAndClear(t *testing.T) {
	c := newTestCache(t)

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)

	c.Delete("a")
	if _, found := c.Get("a"); found {
		t.Error("Expected a deleted")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Expected empty cache after Clear, got %d", c.Len())
	}
}

func TestSweepRemovesExpired(t *testing.T) {
	c := newTestCache(t)

	c.Set("short", 1, 10*time.Millisecond)
	c.Set("long", 2, time.Hour)

	time.Sleep(20 * time.Millisecond)
	c.Sweep()

	if c.Len() != 1 {
		t.Errorf("Expected 1 entry after sweep, got %d", c.Len())
	}
	var out int
	if !c.GetJSON("long", &out) || out != 2 {
		t.Error("Sweep must not disturb unexpired entries")
	}
}

func TestStats(t *testing.T) {
	c := newTestCache(t)

	c.Set("a", 1, time.Hour)
	c.Set("b", 2, time.Hour)

	stats := c.Stats()
	if stats["active_entries"] != 2 || stats["total_entries"] != 2 {
		t.Errorf("Unexpected stats: %v", stats)
	}
}
