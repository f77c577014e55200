package service

import "sync"

// ExplanationCache is a thread-safe LRU cache of generated explanations.
type ExplanationCache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]string
	order   []string // oldest first
}

// NewExplanationCache creates a cache with the given maximum number of entries.
// If maxSize <= 0, it defaults to 256.
func NewExplanationCache(maxSize int) *ExplanationCache {
	if maxSize <= 0 {
		maxSize = 256
	}
	return &ExplanationCache{
		maxSize: maxSize,
		entries: make(map[string]string),
	}
}

// Get returns the cached explanation for key.
func (c *ExplanationCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	text, ok := c.entries[key]
	if ok {
		c.touch(key)
	}
	return text, ok
}

// Put stores an explanation, evicting the least recently used one if full.
func (c *ExplanationCache) Put(key, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.entries[key] = text
		c.touch(key)
		return
	}
	for len(c.entries) >= c.maxSize && len(c.order) > 0 {
		delete(c.entries, c.order[0])
		c.order = c.order[1:]
	}
	c.entries[key] = text
	c.order = append(c.order, key)
}

// Len returns the number of cached explanations.
func (c *ExplanationCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *ExplanationCache) touch(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			c.order = append(c.order, key)
			return
		}
	}
}
