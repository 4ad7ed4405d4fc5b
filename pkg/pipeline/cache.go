package pipeline

import "sync"

// ResultCache memoizes completed runs by input content fingerprint.
// The cache is constructed by the caller and passed in explicitly, so
// its lifetime is owned outside the pipeline; a nil cache disables
// memoization.
type ResultCache struct {
	mu    sync.RWMutex
	cache map[string]*RunResult
}

// NewResultCache creates an empty result cache.
func NewResultCache() *ResultCache {
	return &ResultCache{cache: make(map[string]*RunResult)}
}

// Get retrieves a cached run result by fingerprint.
func (c *ResultCache) Get(fingerprint string) (*RunResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result, ok := c.cache[fingerprint]
	return result, ok
}

// Set stores a run result under its fingerprint.
func (c *ResultCache) Set(fingerprint string, result *RunResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[fingerprint] = result
}

// Clear removes all cached results.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]*RunResult)
}

// Size returns the number of cached runs.
func (c *ResultCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}
