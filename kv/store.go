// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

// Getter defines methods to read kv.
type Getter interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	IsNotFound(err error) bool
}

// Putter defines methods to write kv.
type Putter interface {
	Put(key, val []byte) error
	Delete(key []byte) error
}

// Bulk is the bulk putter. All ops are written in one atomic write.
type Bulk interface {
	Putter
	Len() int
	Write() error
}

// Iterator iterates over kv pairs in ascending key order.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Release()
	Error() error
}

// Range is the key range.
type Range struct {
	Start []byte // start of key range (included)
	Limit []byte // limit of key range (excluded)
}

// Store defines the full functional kv store.
type Store interface {
	Getter
	Putter

	Bulk() Bulk
	Iterate(r Range) Iterator
}

// StoreCloser is a store backed by closable resources.
type StoreCloser interface {
	Store
	Close() error
}

// Change is a pending write. A nil Value means deletion.
type Change struct {
	Key   []byte
	Value []byte
}

// ApplyChanges writes changes into the putter.
func ApplyChanges(p Putter, changes []Change) error {
	for _, c := range changes {
		if c.Value == nil {
			if err := p.Delete(c.Key); err != nil {
				return err
			}
			continue
		}
		if err := p.Put(c.Key, c.Value); err != nil {
			return err
		}
	}
	return nil
}

// GetOrNil returns nil value without error if the key is missing.
func GetOrNil(g Getter, key []byte) ([]byte, error) {
	val, err := g.Get(key)
	if err != nil {
		if g.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return val, nil
}
