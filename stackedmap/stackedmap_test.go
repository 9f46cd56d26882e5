// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stackedmap_test

import (
	"errors"
	"testing"

	"github.com/firofarm/chef/stackedmap"
	"github.com/stretchr/testify/assert"
)

func M(a ...any) []any {
	return a
}

func TestStackedMap(t *testing.T) {
	assert := assert.New(t)
	src := map[string]string{"foo": "bar"}

	sm := stackedmap.New(func(key string) (string, bool, error) {
		v, r := src[key]
		return v, r, nil
	})

	tests := []struct {
		f         func()
		depth     int
		putKey    string
		putValue  string
		getKey    string
		getReturn []any
	}{
		{func() {}, 1, "", "", "foo", []any{"bar", true, nil}},
		{func() { sm.Push() }, 2, "foo", "baz", "foo", []any{"baz", true, nil}},
		{func() {}, 2, "foo", "baz1", "foo", []any{"baz1", true, nil}},
		{func() { sm.Push() }, 3, "foo", "qux", "foo", []any{"qux", true, nil}},
		{func() { sm.Pop() }, 2, "", "", "foo", []any{"baz1", true, nil}},
		{func() { sm.Pop() }, 1, "", "", "foo", []any{"bar", true, nil}},

		{func() { sm.Push(); sm.Push() }, 3, "", "", "", nil},
		{func() { sm.PopTo(0) }, 0, "", "", "", nil},
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

func TestStackedMapPuts(t *testing.T) {
	assert := assert.New(t)
	sm := stackedmap.New(func(key string) (string, bool, error) {
		return "", false, nil
	})

	kvs := []struct {
		k, v string
	}{
		{"a", "b"},
		{"a", "b"},
		{"a1", "b1"},
		{"a2", "b2"},
		{"a3", "b3"},
		{"a4", "b4"},
	}

	for _, kv := range kvs {
		sm.Push()
		sm.Put(kv.k, kv.v)
	}
	i := 0
	sm.Journal(func(k, v string) bool {
		assert.Equal(kvs[i].k, k)
		assert.Equal(kvs[i].v, v)
		i++
		return true
	})
	assert.Equal(len(kvs), i)

	i = 0
	sm.Journal(func(k, v string) bool {
		i++
		return false
	})
	assert.Equal(1, i, "Journal traverse should abort")
}

func TestStackedMapSourceError(t *testing.T) {
	boom := errors.New("boom")
	sm := stackedmap.New(func(key int) (int, bool, error) {
		return 0, false, boom
	})

	_, _, err := sm.Get(1)
	assert.ErrorIs(t, err, boom)

	sm.Put(1, 7)
	v, ok, err := sm.Get(1)
	assert.Nil(t, err)
	assert.True(t, ok)
	assert.Equal(t, 7, v)
}

func TestStackedMapRepeatedPutSameLevel(t *testing.T) {
	sm := stackedmap.New(func(key string) (int, bool, error) { return 0, false, nil })
	sm.Push()
	sm.Put("x", 1)
	sm.Put("x", 2)
	sm.Pop()

	_, ok, _ := sm.Get("x")
	assert.False(t, ok)
}
