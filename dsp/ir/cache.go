package ir

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/afero"
)

// DefaultCacheSize is the number of prepared responses kept by NewCache
// when size is not positive.
const DefaultCacheSize = 16

type cacheKey struct {
	path       string
	sampleRate float64
}

// Cache loads and prepares impulse responses from a file system and keeps
// the most recently used ones. It is safe for concurrent use.
type Cache struct {
	fs    afero.Fs
	opts  []PrepareOption
	items *lru.Cache[cacheKey, *ImpulseResponse]
}

// NewCache creates a cache reading from fs. opts are applied to every
// Prepare call.
func NewCache(fs afero.Fs, size int, opts ...PrepareOption) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}

	items, err := lru.New[cacheKey, *ImpulseResponse](size)
	if err != nil {
		return nil, fmt.Errorf("ir: create cache: %w", err)
	}

	return &Cache{fs: fs, opts: opts, items: items}, nil
}

// Get returns the response at path prepared for sampleRate, loading it on a
// miss. The returned response is shared; callers must not modify it.
func (c *Cache) Get(path string, sampleRate float64) (*ImpulseResponse, error) {
	key := cacheKey{path: path, sampleRate: sampleRate}
	if resp, ok := c.items.Get(key); ok {
		return resp, nil
	}

	raw, err := Load(c.fs, path)
	if err != nil {
		return nil, err
	}

	resp, err := raw.Prepare(sampleRate, c.opts...)
	if err != nil {
		return nil, fmt.Errorf("ir: prepare %s: %w", path, err)
	}

	c.items.Add(key, resp)

	return resp, nil
}

// Convolver returns a new convolver for the response at path.
func (c *Cache) Convolver(path string, sampleRate float64) (*Convolver, error) {
	resp, err := c.Get(path, sampleRate)
	if err != nil {
		return nil, err
	}
	return NewConvolver(resp)
}

// Contains reports whether a prepared response is cached.
func (c *Cache) Contains(path string, sampleRate float64) bool {
	return c.items.Contains(cacheKey{path: path, sampleRate: sampleRate})
}

// Len returns the number of cached responses.
func (c *Cache) Len() int { return c.items.Len() }

// Purge drops every cached response.
func (c *Cache) Purge() { c.items.Purge() }
