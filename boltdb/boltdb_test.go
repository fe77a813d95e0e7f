// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package boltdb

import (
	"path/filepath"
	"testing"

	"github.com/aurumchain/aurum/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *BoltDB {
	db, err := New(filepath.Join(t.TempDir(), "bolt.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBoltDB(t *testing.T) {
	db := newTestDB(t)

	assert.Nil(t, db.Put([]byte("k"), []byte("v")))
	v, err := db.Get([]byte("k"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("v"), v)

	has, err := db.Has([]byte("x"))
	assert.Nil(t, err)
	assert.False(t, has)

	assert.Nil(t, db.Delete([]byte("k")))
	_, err = db.Get([]byte("k"))
	assert.True(t, db.IsNotFound(err))
}

func TestBoltDBBulkAndIterate(t *testing.T) {
	db := newTestDB(t)

	bulk := db.Bulk()
	for _, k := range []string{"a3", "a1", "b1", "a2"} {
		assert.Nil(t, bulk.Put([]byte(k), []byte(k)))
	}
	assert.Nil(t, bulk.Delete([]byte("a2")))
	assert.Equal(t, 5, bulk.Len())
	assert.Nil(t, bulk.Write())

	var keys []string
	it := kv.Bucket("a").NewStore(db).Iterate(kv.Range{})
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	it.Release()
	assert.Nil(t, it.Error())
	assert.Equal(t, []string{"1", "3"}, keys)

	keys = keys[:0]
	it = db.Iterate(kv.Range{Start: []byte("a2"), Limit: []byte("b1")})
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	it.Release()
	assert.Equal(t, []string{"a3"}, keys)
}
