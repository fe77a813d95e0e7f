// Copyright (c) 2025 The Aurum developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stackedmap_test

import (
	"testing"

	"github.com/aurumchain/aurum/stackedmap"
	"github.com/stretchr/testify/assert"
)

func M(a ...interface{}) []interface{} {
	return a
}

func TestStackedMap(t *testing.T) {
	assert := assert.New(t)
	src := map[string]string{"foo": "bar"}

	sm := stackedmap.New[string, string](func(key string) (string, bool, error) {
		v, r := src[key]
		return v, r, nil
	})

	tests := []struct {
		f         func()
		depth     int
		putKey    string
		putValue  string
		getKey    string
		getReturn []interface{}
	}{
		{func() {}, 1, "", "", "foo", M("bar", true, nil)},
		{func() { sm.Push() }, 2, "foo", "baz", "foo", M("baz", true, nil)},
		{func() {}, 2, "foo", "baz1", "foo", M("baz1", true, nil)},
		{func() { sm.Push() }, 3, "foo", "qux", "foo", M("qux", true, nil)},
		{func() { sm.Pop() }, 2, "", "", "foo", M("baz1", true, nil)},
		{func() { sm.Pop() }, 1, "", "", "foo", M("bar", true, nil)},
		{func() { sm.Push(); sm.Push() }, 3, "", "", "", nil},
		{func() { sm.PopTo(1) }, 1, "", "", "foo", M("bar", true, nil)},
	}

	for _, test := range tests {
		test.f()
		assert.Equal(test.depth, sm.Depth())
		if test.putKey != "" {
			sm.Put(test.putKey, test.putValue)
		}
		if test.getKey != "" {
			v, ok, err := sm.Get(test.getKey)
			assert.Equal(test.getReturn, M(v, ok, err))
		}
	}
}

func TestStackedMapJournal(t *testing.T) {
	sm := stackedmap.New[int, int](func(key int) (int, bool, error) {
		return 0, false, nil
	})

	sm.Put(1, 10)
	rev := sm.Push()
	sm.Put(2, 20)
	sm.Put(1, 11)

	var entries [][2]int
	sm.Journal(func(k, v int) bool {
		entries = append(entries, [2]int{k, v})
		return true
	})
	assert.Equal(t, [][2]int{{1, 10}, {2, 20}, {1, 11}}, entries)

	sm.PopTo(rev)
	v, ok, _ := sm.Get(1)
	assert.True(t, ok)
	assert.Equal(t, 10, v)
	_, ok, _ = sm.Get(2)
	assert.False(t, ok)
}
