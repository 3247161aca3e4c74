// Package inmemory provides a map-backed cache driver for tests and
// single-process use.
package inmemory

import (
	"context"
	"errors"
	"sync"

	"github.com/papercomputeco/respond/pkg/cache"
)

// Driver implements cache.Driver using an in-memory map.
type Driver struct {
	// mu guards the entries map
	mu sync.RWMutex

	// entries maps request content hash to cached entry
	entries map[string]*cache.Entry
}

// NewDriver creates a new in-memory cache.
func NewDriver() *Driver {
	return &Driver{
		entries: make(map[string]*cache.Entry),
	}
}

// Put stores an entry. Returns true if the entry was newly inserted,
// false if the key already existed.
func (d *Driver) Put(_ context.Context, entry *cache.Entry) (bool, error) {
	if entry == nil {
		return false, errors.New("cannot store nil entry")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.entries[entry.Key]; ok {
		return false, nil
	}

	d.entries[entry.Key] = entry
	return true, nil
}

// Get retrieves an entry by key.
func (d *Driver) Get(_ context.Context, key string) (*cache.Entry, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	entry, ok := d.entries[key]
	if !ok {
		return nil, cache.NotFoundError{Key: key}
	}

	return entry, nil
}

// Has checks whether an entry exists for the key.
func (d *Driver) Has(_ context.Context, key string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	_, ok := d.entries[key]
	return ok, nil
}

// Delete removes an entry.
func (d *Driver) Delete(_ context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.entries, key)
	return nil
}

// List returns all entries in the store.
func (d *Driver) List(_ context.Context) ([]*cache.Entry, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]*cache.Entry, 0, len(d.entries))
	for _, entry := range d.entries {
		result = append(result, entry)
	}
	return result, nil
}

// Close releases nothing for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}
