// Package cache defines the response cache used by pkg/client to serve
// repeated identical requests without a round trip to the API.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/papercomputeco/respond/pkg/responses"
)

// Entry is one cached response, keyed by the content hash of the request
// that produced it.
type Entry struct {
	// Key is the request's content hash.
	Key string

	// Model the response was generated by.
	Model string

	// Response is the complete response body.
	Response *responses.Response

	// CreatedAt is when the entry was stored.
	CreatedAt time.Time
}

// Driver defines the interface for persisting and retrieving cached
// responses in a storage backend.
type Driver interface {
	// Put stores an entry. Returns true if the entry was newly inserted,
	// false if the key already existed. Existing entries are not
	// overwritten; identical requests are expected to hash to identical
	// keys, so the first write wins.
	Put(ctx context.Context, entry *Entry) (bool, error)

	// Get retrieves an entry by key. Returns NotFoundError when the key
	// is absent.
	Get(ctx context.Context, key string) (*Entry, error)

	// Has checks whether an entry exists for the key.
	Has(ctx context.Context, key string) (bool, error)

	// Delete removes an entry. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error

	// List returns all entries in the store.
	List(ctx context.Context) ([]*Entry, error)

	// Close closes the store and releases any resources.
	Close() error
}

// Key computes the content hash for a request. Streaming does not change
// the generated output, so the Stream flag is excluded: a streamed and a
// non-streamed rendition of the same request share one cache entry.
func Key(req *responses.Request) (string, error) {
	if req == nil {
		return "", nil
	}

	clone := *req
	clone.Stream = false
	clone.RawRequest = nil

	data, err := json.Marshal(&clone)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
