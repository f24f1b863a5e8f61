package chunker

import (
	"os"
	"path/filepath"
	"sync"
)

// Cache memoizes chunk sets by file path, validated by content fingerprint.
// A hit returns the previously computed units; a fingerprint mismatch
// recomputes. Chunking is a pure function of the file contents, so a
// duplicate computation under contention would be wasteful but never wrong;
// the single mutex simply avoids it.
type Cache struct {
	mu       sync.Mutex
	maxPages int
	entries  map[string]*cacheEntry
}

type cacheEntry struct {
	fingerprint Fingerprint
	units       []Unit
}

func NewCache(maxPages int) *Cache {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return &Cache{
		maxPages: maxPages,
		entries:  make(map[string]*cacheEntry),
	}
}

// Get returns the chunk set for path, reusing the cached set when the file
// bytes are unchanged. The returned slice is shared; callers must treat it
// as read-only.
func (c *Cache) Get(path string) ([]Unit, Fingerprint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", &ProcessingError{Path: path, Err: err}
	}
	fp := FingerprintBytes(data)

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[path]; ok && e.fingerprint == fp {
		return e.units, fp, nil
	}

	units, fp, err := chunkBytes(data, filepath.Base(path), c.maxPages)
	if err != nil {
		return nil, "", &ProcessingError{Path: path, Err: err}
	}
	c.entries[path] = &cacheEntry{fingerprint: fp, units: units}
	return units, fp, nil
}

// Invalidate drops the cached chunk set for path, forcing the next Get to
// recompute.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}
