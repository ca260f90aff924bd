// Package slot manages per-commit slot identities: the per-branch slot
// counter cache and the rules for slot and branch names.
package slot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// cacheFile is the cache location relative to the .git directory.
const cacheFile = "laminar/slots.json"

// Cache tracks slot allocation state per branch. It is loaded once per
// command, mutated, and explicitly saved.
type Cache struct {
	// Counters maps branch name to the highest numeric slot handed out
	Counters map[string]uint `json:"counters"`
	// UsedSlots maps branch name to the set of all slots in use
	UsedSlots map[string]map[string]bool `json:"usedSlots"`

	path string
}

// LoadCache reads the slot cache under the given .git directory. A missing
// file yields an empty cache.
func LoadCache(gitDir string) (*Cache, error) {
	path := filepath.Join(gitDir, cacheFile)
	cache := &Cache{
		Counters:  make(map[string]uint),
		UsedSlots: make(map[string]map[string]bool),
		path:      path,
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cache, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read slot cache %s: %w", path, err)
	}

	if err := json.Unmarshal(data, cache); err != nil {
		return nil, fmt.Errorf("failed to parse slot cache %s: %w", path, err)
	}
	if cache.Counters == nil {
		cache.Counters = make(map[string]uint)
	}
	if cache.UsedSlots == nil {
		cache.UsedSlots = make(map[string]map[string]bool)
	}
	return cache, nil
}

// Save writes the cache back to disk, creating the directory if needed.
func (c *Cache) Save() error {
	if c.path == "" {
		return fmt.Errorf("slot cache has no path; load it with LoadCache")
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed to create slot cache directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize slot cache: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write slot cache %s: %w", c.path, err)
	}
	return nil
}

// Allocate hands out the next numeric slot for a branch as a two-digit
// string ("01", "02", ...). Counters never reuse a value, so slots stay
// unique across the branch's lifetime.
func (c *Cache) Allocate(branch string) string {
	next := c.Counters[branch] + 1
	c.Counters[branch] = next

	slot := fmt.Sprintf("%02d", next)
	c.markUsed(branch, slot)
	return slot
}

// IsAvailable reports whether a slot is unused on the branch.
func (c *Cache) IsAvailable(branch, slot string) bool {
	return !c.UsedSlots[branch][slot]
}

// MarkUsed records a slot as taken. Numeric slots advance the branch
// counter so later allocations never collide with them. Idempotent.
func (c *Cache) MarkUsed(branch, slot string) {
	c.markUsed(branch, slot)

	if n, err := strconv.ParseUint(slot, 10, 32); err == nil {
		if uint(n) > c.Counters[branch] {
			c.Counters[branch] = uint(n)
		}
	}
}

// EnsureSlot records a slot observed during reconciliation.
func (c *Cache) EnsureSlot(branch, slot string) {
	c.MarkUsed(branch, slot)
}

func (c *Cache) markUsed(branch, slot string) {
	if c.UsedSlots[branch] == nil {
		c.UsedSlots[branch] = make(map[string]bool)
	}
	c.UsedSlots[branch][slot] = true
}
