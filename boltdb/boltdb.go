// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package boltdb implements kv.Store on top of bbolt.
package boltdb

import (
	"bytes"
	"time"

	"github.com/aurumchain/aurum/kv"
	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var (
	log = log15.New("pkg", "boltdb")

	rootBucket = []byte("aurum")

	// ErrNotFound is returned by Get when the key is missing.
	ErrNotFound = errors.New("boltdb: not found")
)

var _ kv.StoreCloser = (*BoltDB)(nil)

// BoltDB wraps a bbolt database with a single root bucket.
type BoltDB struct {
	db *bolt.DB
}

// New opens or creates the bolt database file at path.
func New(path string) (*BoltDB, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "open bolt db")
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(rootBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create root bucket")
	}
	log.Debug("bolt db opened", "path", path)
	return &BoltDB{db}, nil
}

// IsNotFound to check if the error returned by Get indicates key not found.
func (b *BoltDB) IsNotFound(err error) bool {
	return err == ErrNotFound
}

// Get retrieve value for given key.
func (b *BoltDB) Get(key []byte) (val []byte, err error) {
	err = b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(rootBucket).Get(key)
		if v == nil {
			return ErrNotFound
		}
		// values are only valid during the tx
		val = append([]byte{}, v...)
		return nil
	})
	return
}

// Has returns whether a key exists.
func (b *BoltDB) Has(key []byte) (bool, error) {
	_, err := b.Get(key)
	if err != nil {
		if err == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Put save value for given key.
func (b *BoltDB) Put(key, val []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(rootBucket).Put(key, val)
	})
}

// Delete deletes the given key.
func (b *BoltDB) Delete(key []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(rootBucket).Delete(key)
	})
}

// Close closes the database file.
func (b *BoltDB) Close() error {
	return b.db.Close()
}

// Bulk collects ops and writes them in one bolt update transaction.
func (b *BoltDB) Bulk() kv.Bulk {
	return &bulk{db: b.db}
}

// Iterate creates an iterator over the range. It holds a read transaction
// until Release is called.
func (b *BoltDB) Iterate(r kv.Range) kv.Iterator {
	tx, err := b.db.Begin(false)
	if err != nil {
		return &iterator{err: errors.Wrap(err, "begin read tx")}
	}
	return &iterator{
		tx:     tx,
		cursor: tx.Bucket(rootBucket).Cursor(),
		r:      r,
	}
}

type op struct {
	key, val []byte
	del      bool
}

type bulk struct {
	db  *bolt.DB
	ops []op
}

func (b *bulk) Put(key, val []byte) error {
	b.ops = append(b.ops, op{key: append([]byte{}, key...), val: append([]byte{}, val...)})
	return nil
}

func (b *bulk) Delete(key []byte) error {
	b.ops = append(b.ops, op{key: append([]byte{}, key...), del: true})
	return nil
}

func (b *bulk) Len() int {
	return len(b.ops)
}

func (b *bulk) Write() error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(rootBucket)
		for _, o := range b.ops {
			var err error
			if o.del {
				err = bkt.Delete(o.key)
			} else {
				err = bkt.Put(o.key, o.val)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "write bulk")
	}
	b.ops = nil
	return nil
}

type iterator struct {
	tx       *bolt.Tx
	cursor   *bolt.Cursor
	r        kv.Range
	started  bool
	key, val []byte
	err      error
}

func (it *iterator) Next() bool {
	if it.cursor == nil {
		return false
	}
	var k, v []byte
	if !it.started {
		it.started = true
		if len(it.r.Start) > 0 {
			k, v = it.cursor.Seek(it.r.Start)
		} else {
			k, v = it.cursor.First()
		}
	} else {
		k, v = it.cursor.Next()
	}
	if k == nil || (len(it.r.Limit) > 0 && bytes.Compare(k, it.r.Limit) >= 0) {
		it.key, it.val = nil, nil
		it.cursor = nil
		return false
	}
	it.key, it.val = k, v
	return true
}

func (it *iterator) Key() []byte   { return it.key }
func (it *iterator) Value() []byte { return it.val }
func (it *iterator) Error() error  { return it.err }

func (it *iterator) Release() {
	if it.tx != nil {
		_ = it.tx.Rollback()
		it.tx = nil
	}
	it.cursor = nil
}
