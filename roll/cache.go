package roll

import "sync"

// Cache memoizes performances by a stable source identity (for files:
// path plus size and modification time). The source rarely changes between
// repeated invocations from an interactive front end, and a hit returns the
// identical *Performance instance without recomputation.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*Performance
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*Performance)}
}

// Load returns the performance cached under key, calling build on the first
// use. Concurrent misses may build twice; the first stored result wins so
// hits stay identity-stable.
func (c *Cache) Load(key string, build func() (*Performance, error)) (*Performance, error) {
	c.mu.Lock()
	if p, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return p, nil
	}
	c.mu.Unlock()

	p, err := build()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[key]; ok {
		return existing, nil
	}
	c.entries[key] = p
	return p, nil
}

// Len reports the number of cached performances.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
