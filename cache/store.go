package cache

import (
	"sort"
	"sync"
)

// Store is an interface for a sub-breed cache store.
// It maps normalized breed keys to ordered lists of sub-breed names.
// Entries are never expired or purged; they live as long as the store.
//
// Implementations must be thread-safe!
// Implementations must also copy values on both Put and Get, so that callers
// can never reach the stored slice.
type Store interface {
	// Get returns the stored sub-breeds for the given key, if it exists.
	// It also returns a boolean indicating whether retrieval was successful.
	Get(key string) ([]string, bool, error)
	// Put stores the given sub-breeds under the given key.
	// Order of the values must be preserved.
	Put(key string, subBreeds []string) error
	// AllKeys calls the given callback for each key in the store, in key order.
	AllKeys(cb func(string)) error
}

type MemStore struct {
	mutex *sync.RWMutex
	db    map[string][]string
}

func NewMemStore() MemStore {
	return MemStore{
		mutex: &sync.RWMutex{},
		db:    make(map[string][]string),
	}
}

func (m MemStore) Get(key string) ([]string, bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	subBreeds, ok := m.db[key]
	if !ok {
		return nil, false, nil
	}
	return clone(subBreeds), true, nil
}

func (m MemStore) Put(key string, subBreeds []string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.db[key] = clone(subBreeds)
	return nil
}

func (m MemStore) AllKeys(cb func(string)) error {
	m.mutex.RLock()
	keys := make([]string, 0, len(m.db))
	for key := range m.db {
		keys = append(keys, key)
	}
	m.mutex.RUnlock()

	sort.Strings(keys)
	for _, key := range keys {
		cb(key)
	}
	return nil
}

// clone returns a non-nil copy of the given slice.
func clone(s []string) []string {
	c := make([]string, len(s))
	copy(c, s)
	return c
}
