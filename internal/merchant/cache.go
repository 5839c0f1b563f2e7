package merchant

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/yaldosari/sms-expense-tracker/internal/domain"
)

// Entry is one persisted merchant-to-category mapping.
type Entry struct {
	Category    string            `json:"category"`
	Provenance  domain.Provenance `json:"provenance,omitempty"`
	LastUpdated time.Time         `json:"last_updated"`
}

// Cache is the persisted mapping from normalized merchant key to category.
// It is loaded fully at process start and flushed on write. The on-disk form
// is a flat JSON object so it doubles as a manual override table: an entry
// written by hand (no provenance field) is treated as a manual assignment and
// is never overwritten by rule or AI results.
type Cache struct {
	mu      sync.RWMutex
	path    string
	entries map[string]Entry
	dirty   bool
}

// LoadCache reads the cache file at path. A missing file yields an empty
// cache; a malformed file is an error so a corrupted override table is never
// silently discarded.
func LoadCache(path string) (*Cache, error) {
	c := &Cache{path: path, entries: make(map[string]Entry)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("merchant cache: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		return nil, fmt.Errorf("merchant cache: parse %s: %w", path, err)
	}
	// Entries without a provenance field were edited by hand.
	for k, e := range c.entries {
		if e.Provenance == "" {
			e.Provenance = domain.ProvenanceManual
			c.entries[k] = e
		}
	}
	return c, nil
}

// Lookup returns the entry for key, if present.
func (c *Cache) Lookup(key string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

// Learn records a newly resolved merchant. It only ever inserts: an existing
// entry is never overwritten implicitly, whatever its provenance. Returns
// true when the entry was written.
func (c *Cache) Learn(key, category string, prov domain.Provenance) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return false
	}
	c.entries[key] = Entry{Category: category, Provenance: prov, LastUpdated: time.Now().UTC()}
	c.dirty = true
	return true
}

// Set overwrites the entry for key as part of an explicit recategorization
// apply step. Manual entries are sticky: Set refuses to replace them and
// returns false.
func (c *Cache) Set(key, category string, prov domain.Provenance) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[key]; ok {
		if existing.Provenance == domain.ProvenanceManual {
			return false
		}
		if existing.Category == category && existing.Provenance == prov {
			return true
		}
	}
	c.entries[key] = Entry{Category: category, Provenance: prov, LastUpdated: time.Now().UTC()}
	c.dirty = true
	return true
}

// Len returns the number of cached merchants.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Keys returns the cached merchant keys in sorted order.
func (c *Cache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns an in-memory copy detached from the backing file. Used by
// recategorization preview so the dry run can exercise the exact resolution
// order without mutating persisted state.
func (c *Cache) Clone() *Cache {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entries := make(map[string]Entry, len(c.entries))
	for k, v := range c.entries {
		entries[k] = v
	}
	return &Cache{entries: entries}
}

// Flush writes the cache back to its file atomically. A clone (no path) and a
// clean cache are both no-ops.
func (c *Cache) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.path == "" || !c.dirty {
		return nil
	}

	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("merchant cache: marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("merchant cache: mkdir: %w", err)
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("merchant cache: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("merchant cache: rename: %w", err)
	}
	c.dirty = false
	return nil
}
