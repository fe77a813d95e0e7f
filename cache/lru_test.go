// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLRU(t *testing.T) {
	c, err := NewLRU[uint32, string](2)
	assert.Nil(t, err)

	c.Add(1, "a")
	c.Add(2, "b")
	c.Add(3, "c")

	_, ok := c.Get(1)
	assert.False(t, ok, "oldest should be evicted")
	v, ok := c.Get(3)
	assert.True(t, ok)
	assert.Equal(t, "c", v)

	_, err = NewLRU[uint32, string](0)
	assert.NotNil(t, err)
}

func TestLRUGetOrLoad(t *testing.T) {
	c, _ := NewLRU[string, int](4)
	loads := 0
	load := func(k string) (int, error) {
		loads++
		if k == "bad" {
			return 0, errors.New("boom")
		}
		return len(k), nil
	}

	v, err := c.GetOrLoad("abc", load)
	assert.Nil(t, err)
	assert.Equal(t, 3, v)
	v, _ = c.GetOrLoad("abc", load)
	assert.Equal(t, 3, v)
	assert.Equal(t, 1, loads)

	_, err = c.GetOrLoad("bad", load)
	assert.EqualError(t, err, "boom")
	assert.Equal(t, 1, c.Len())
}

func TestCacheStats(t *testing.T) {
	cs := &Stats{}
	cs.Hit()
	cs.Miss()
	_, hit, miss := cs.Stats()
	assert.Equal(t, int64(1), hit)
	assert.Equal(t, int64(1), miss)

	changed, _, _ := cs.Stats()
	assert.False(t, changed)

	cs.Hit()
	cs.Miss()
	assert.Equal(t, int64(3), cs.Hit())

	changed, hit, miss = cs.Stats()
	assert.Equal(t, int64(3), hit)
	assert.Equal(t, int64(2), miss)
	assert.True(t, changed)
}
