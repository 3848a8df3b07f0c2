package breedcache

import (
	"context"
	"sync/atomic"

	"github.com/ericselin/breedcache/cache"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

type Config struct {
	// Provider to delegate cache misses to. Required.
	Provider Provider
	// Storage for cache entries. An in-memory store is used if nil.
	Store cache.Store
	// Logger to use. The global zerolog logger is used if nil.
	Logger *zerolog.Logger
	// Concurrent makes the provider safe for concurrent use.
	// Concurrent misses on the same key then share one delegated call,
	// which is counted once.
	Concurrent bool
}

// CachingProvider is a Provider that remembers the sub-breeds returned by the
// wrapped provider. Failures are never cached, so a breed that was not found
// is looked up again on every call.
//
// Unless created with Config.Concurrent, a CachingProvider must not be used
// from multiple goroutines at once.
type CachingProvider struct {
	provider   Provider
	store      cache.Store
	log        zerolog.Logger
	concurrent bool
	inflight   singleflight.Group
	callsMade  atomic.Int64
}

// NewCachingProvider wraps the configured provider with a cache.
func NewCachingProvider(config Config) *CachingProvider {
	var logger zerolog.Logger
	if config.Logger == nil {
		logger = log.Logger
	} else {
		logger = *config.Logger
	}

	store := config.Store
	if store == nil {
		store = cache.NewMemStore()
	}

	return &CachingProvider{
		provider:   config.Provider,
		store:      store,
		log:        logger.With().Str("component", "cache").Logger(),
		concurrent: config.Concurrent,
	}
}

// SubBreeds returns the cached sub-breeds for the breed, or delegates to the
// wrapped provider on a miss. Blank breeds are never cached.
// The returned slice is always a fresh copy.
func (c *CachingProvider) SubBreeds(ctx context.Context, breed string) ([]string, error) {
	key := NormalizeKey(breed)
	if key == "" {
		c.log.Trace().Str("breed", breed).Msg("Blank breed, not caching")
		return c.delegate(ctx, breed, key)
	}

	if subBreeds, ok := c.cached(key); ok {
		c.log.Trace().Str("key", key).Msg("Cache hit")
		return subBreeds, nil
	}

	if !c.concurrent {
		return c.delegate(ctx, breed, key)
	}

	v, err, shared := c.inflight.Do(key, func() (interface{}, error) {
		// another call may have stored the key after our check
		if subBreeds, ok := c.cached(key); ok {
			return subBreeds, nil
		}
		// the lookup is shared, it outlives the cancellation of any one caller
		return c.delegate(context.WithoutCancel(ctx), breed, key)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.log.Trace().Str("key", key).Msg("Shared in-flight lookup")
	}
	return clone(v.([]string)), nil
}

// CallsMade returns the number of calls delegated to the wrapped provider.
func (c *CachingProvider) CallsMade() int {
	return int(c.callsMade.Load())
}

// CachedKeys returns the normalized keys currently in the cache, in key order.
func (c *CachingProvider) CachedKeys() ([]string, error) {
	keys := make([]string, 0)
	err := c.store.AllKeys(func(key string) {
		keys = append(keys, key)
	})
	return keys, err
}

// cached returns a copy of the stored entry for the key.
// Store errors are logged and reported as a miss.
func (c *CachingProvider) cached(key string) ([]string, bool) {
	subBreeds, ok, err := c.store.Get(key)
	if err != nil {
		c.log.Error().Err(err).Str("key", key).Msg("Could not read from cache")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return clone(subBreeds), true
}

// delegate calls the wrapped provider with the breed as given and stores the
// result under the key on success, unless the key is blank.
func (c *CachingProvider) delegate(ctx context.Context, breed, key string) ([]string, error) {
	c.callsMade.Add(1)
	c.log.Trace().Str("key", key).Msg("Cache miss, delegating")

	subBreeds, err := c.provider.SubBreeds(ctx, breed)
	if err != nil {
		c.log.Debug().Err(err).Str("breed", breed).Msg("Lookup failed, not caching")
		return nil, err
	}

	if key != "" {
		if err := c.store.Put(key, clone(subBreeds)); err != nil {
			c.log.Error().Err(err).Str("key", key).Msg("Could not write to cache")
		} else {
			c.log.Trace().Str("key", key).Int("count", len(subBreeds)).Msg("Cache write")
		}
	}
	return clone(subBreeds), nil
}

// clone returns a non-nil copy of the given slice.
func clone(s []string) []string {
	c := make([]string, len(s))
	copy(c, s)
	return c
}
