package boundary

import (
	"github.com/dgraph-io/badger/v4"
)

// Cache is a disk-backed store for normalized boundary sets, so repeated
// drilldowns skip re-parsing the raw GeoJSON.
type Cache struct {
	db *badger.DB
}

func OpenCache(path string) (*Cache, error) {
	opts := badger.DefaultOptions(path)
	// Decrease logging verbosity
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached value, or nil without an error when the key is
// absent.
func (c *Cache) Get(key string) ([]byte, error) {
	var val []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	return val, err
}

func (c *Cache) Put(key string, val []byte) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), val)
	})
}
