package cache

import (
	"encoding/binary"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// ErrMiss is returned when a key is not present in the cache.
var ErrMiss = errors.New("cache miss")

// Cache is an in-memory memoization layer backed by Badger.
// It holds catalog responses, tokens and fetched image bytes for the
// lifetime of the process so repeated searches never hit the network twice.
type Cache struct {
	db     *badger.DB
	logger *slog.Logger
	ttl    time.Duration
}

// New opens an in-memory Badger instance. A zero ttl means entries
// never expire.
func New(logger *slog.Logger, ttl time.Duration) (*Cache, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil // Disable Badger's internal logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory badger db: %w", err)
	}

	if logger != nil {
		logger.Debug("cache opened", "ttl", ttl.String())
	}

	return &Cache{db: db, logger: logger, ttl: ttl}, nil
}

// Close releases the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Key builds a canonical cache key from a namespace and its parts.
// Each part is length-prefixed so distinct tuples can never collide
// ("a","bc" vs "ab","c").
func Key(namespace string, parts ...string) []byte {
	size := len(namespace) + 1
	for _, p := range parts {
		size += 4 + len(p)
	}

	key := make([]byte, 0, size)
	key = append(key, namespace...)
	key = append(key, '|')
	for _, p := range parts {
		key = binary.BigEndian.AppendUint32(key, uint32(len(p)))
		key = append(key, p...)
	}
	return key
}

// GetBytes returns the raw value for key, or ErrMiss.
func (c *Cache) GetBytes(key []byte) ([]byte, error) {
	var out []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetBytes stores value under key with the cache's default TTL.
func (c *Cache) SetBytes(key, value []byte) error {
	return c.setBytes(key, value, c.ttl)
}

// SetBytesTTL stores value under key with an explicit TTL, overriding
// the cache default. Used for tokens whose lifetime the catalog dictates.
func (c *Cache) SetBytesTTL(key, value []byte, ttl time.Duration) error {
	return c.setBytes(key, value, ttl)
}

func (c *Cache) setBytes(key, value []byte, ttl time.Duration) error {
	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(key, value)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Delete removes key from the cache. Deleting an absent key is not an
// error.
func (c *Cache) Delete(key []byte) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// GetJSON unmarshals the cached value for key into dest, or returns ErrMiss.
func (c *Cache) GetJSON(key []byte, dest any) error {
	data, err := c.GetBytes(key)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// SetJSON marshals value and stores it under key.
func (c *Cache) SetJSON(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return c.SetBytes(key, data)
}
