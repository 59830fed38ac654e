package encoder

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
)

type BadgerCache struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenBadger opens a cache at dir, or in memory when dir is empty.
func OpenBadger(dir string, ttl time.Duration) (*BadgerCache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerCache{db: db, ttl: ttl}, nil
}

func (c *BadgerCache) Close() error { return c.db.Close() }

func (c *BadgerCache) Get(_ context.Context, key string) ([]float32, bool, error) {
	var raw []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	v, err := unmarshalVector(raw)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (c *BadgerCache) Set(_ context.Context, key string, v []float32) error {
	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), marshalVector(v))
		if c.ttl > 0 {
			e = e.WithTTL(c.ttl)
		}
		return txn.SetEntry(e)
	})
}
