package cache

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// entry is what we store inside go-cache; go-cache tracks the expiry, we keep
// the creation instant for persistence and stats.
type entry struct {
	Data      json.RawMessage
	CreatedAt time.Time
}

// persistedEntry is the on-disk shape of one cache record.
type persistedEntry struct {
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Cache is a TTL cache for external lookup responses, backed by go-cache for
// in-memory expiry and a JSON file for persistence across restarts. An
// expired entry is never returned: go-cache hides it on Get, and a miss
// triggers eviction of whatever has expired. Unbounded by size; acceptable at
// personal scale.
type Cache struct {
	store    *gocache.Cache
	filePath string
	fileMu   sync.Mutex // serializes disk writes; store is internally synchronized
}

// New creates a cache persisted at filePath and loads any prior state.
// Entries that expired while the process was down are dropped during load.
func New(filePath string) *Cache {
	c := &Cache{
		// No janitor: expiry is lazy (evict on access) plus the periodic
		// Sweep job. Default TTL is irrelevant since every Set passes one.
		store:    gocache.New(gocache.NoExpiration, 0),
		filePath: filePath,
	}
	c.load()
	return c
}

// Get returns the raw value for key iff present and unexpired. Expired
// entries are evicted as a side effect of the access.
func (c *Cache) Get(key string) (json.RawMessage, bool) {
	value, found := c.store.Get(key)
	if !found {
		// The key may still occupy memory as an expired record; go-cache
		// only hides it. Evict everything stale so callers never observe it.
		c.store.DeleteExpired()
		return nil, false
	}

	e, ok := value.(entry)
	if !ok {
		return nil, false
	}
	return e.Data, true
}

// GetJSON unmarshals the cached value for key into out and reports a hit.
func (c *Cache) GetJSON(key string, out interface{}) bool {
	raw, found := c.Get(key)
	if !found {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.Printf("⚠️  [CACHE] Corrupt cached value for %s, evicting: %v", key, err)
		c.Delete(key)
		return false
	}
	return true
}

// Set stores value under key for ttl and persists the cache synchronously.
// A zero or negative ttl produces an immediately expired entry, which is a
// legal degenerate no-op.
func (c *Cache) Set(key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value for %s: %w", key, err)
	}

	if ttl <= 0 {
		// Degenerate contract: the entry must never be observable.
		c.store.Delete(key)
		c.save()
		return nil
	}

	c.store.Set(key, entry{Data: data, CreatedAt: time.Now()}, ttl)
	c.save()
	return nil
}

// Delete removes a specific key.
func (c *Cache) Delete(key string) {
	c.store.Delete(key)
	c.save()
}

// Clear removes everything.
func (c *Cache) Clear() {
	c.store.Flush()
	c.save()
	log.Println("🧹 [CACHE] Cache cleared")
}

// Sweep eagerly evicts expired entries. Purely an optimization; Get semantics
// do not depend on it.
func (c *Cache) Sweep() {
	before := c.store.ItemCount()
	c.store.DeleteExpired()
	removed := before - c.store.ItemCount()
	if removed > 0 {
		c.save()
		log.Printf("🧹 [CACHE] Swept %d expired entries", removed)
	}
}

// Len returns the number of resident entries, expired records included.
func (c *Cache) Len() int {
	return c.store.ItemCount()
}

// Stats returns active/expired/total entry counts. Items() only surfaces
// unexpired records while ItemCount() includes ones awaiting eviction, so the
// difference is the expired backlog.
func (c *Cache) Stats() map[string]int {
	active := len(c.store.Items())
	total := c.store.ItemCount()
	expired := total - active
	if expired < 0 {
		expired = 0
	}
	return map[string]int{
		"active_entries":  active,
		"expired_entries": expired,
		"total_entries":   total,
	}
}

// load restores persisted entries, dropping anything already expired. A
// missing or corrupt file yields an empty cache, never an error.
func (c *Cache) load() {
	data, err := os.ReadFile(c.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("⚠️  [CACHE] Failed to read cache file %s: %v (starting empty)", c.filePath, err)
		}
		return
	}

	var persisted map[string]persistedEntry
	if err := json.Unmarshal(data, &persisted); err != nil {
		log.Printf("⚠️  [CACHE] Corrupt cache file %s: %v (starting empty)", c.filePath, err)
		return
	}

	now := time.Now()
	loaded, dropped := 0, 0
	for key, p := range persisted {
		ttl := p.ExpiresAt.Sub(now)
		if ttl <= 0 {
			dropped++
			continue
		}
		c.store.Set(key, entry{Data: p.Data, CreatedAt: p.CreatedAt}, ttl)
		loaded++
	}

	log.Printf("📦 [CACHE] Loaded %d entries from %s (%d expired dropped)", loaded, c.filePath, dropped)
}

// save writes the full entry set to disk. Failures are logged and swallowed;
// the in-memory cache stays authoritative.
func (c *Cache) save() {
	c.fileMu.Lock()
	defer c.fileMu.Unlock()

	persisted := make(map[string]persistedEntry)
	for key, item := range c.store.Items() {
		e, ok := item.Object.(entry)
		if !ok || item.Expiration <= 0 {
			continue
		}
		persisted[key] = persistedEntry{
			Data:      e.Data,
			CreatedAt: e.CreatedAt,
			ExpiresAt: time.Unix(0, item.Expiration),
		}
	}

	data, err := json.MarshalIndent(persisted, "", "  ")
	if err != nil {
		log.Printf("⚠️  [CACHE] Failed to marshal cache: %v", err)
		return
	}

	if err := os.WriteFile(c.filePath, data, 0o644); err != nil {
		log.Printf("⚠️  [CACHE] Failed to save cache to %s: %v", c.filePath, err)
	}
}
