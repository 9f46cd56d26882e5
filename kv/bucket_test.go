// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errNotFound = errors.New("not found")

type mem map[string]string

func (m mem) Get(k []byte) ([]byte, error) {
	if v, ok := m[string(k)]; ok {
		return []byte(v), nil
	}
	return nil, errNotFound
}

func (m mem) Has(k []byte) (bool, error) {
	_, ok := m[string(k)]
	return ok, nil
}

func (m mem) Put(k, v []byte) error {
	m[string(k)] = string(v)
	return nil
}

func (m mem) Delete(k []byte) error {
	delete(m, string(k))
	return nil
}

func (m mem) IsNotFound(err error) bool {
	return errors.Is(err, errNotFound)
}

func TestBucket_Key(t *testing.T) {
	assert.Equal(t, []byte("chef.pool"), Bucket("chef.").Key([]byte("pool")))
	assert.Equal(t, []byte("x"), Bucket("").Key([]byte("x")))
	assert.Equal(t, []byte("b"), Bucket("b").Key(nil))
}

func TestBucket_GetterGet(t *testing.T) {
	m := mem{"k1": "v1", "k2": "v2"}

	tests := []struct {
		b    Bucket
		key  string
		want string
	}{
		{Bucket(""), "k1", "v1"},
		{Bucket(""), "k2", "v2"},
		{Bucket("k"), "k1", ""},
		{Bucket("k"), "1", "v1"},
		{Bucket("k"), "2", "v2"},
		{Bucket("k1"), "", "v1"},
	}
	for _, tt := range tests {
		got, _ := tt.b.NewGetter(m).Get([]byte(tt.key))
		assert.Equal(t, tt.want, string(got), "bucket %q key %q", tt.b, tt.key)
	}
}

func TestBucket_GetterHas(t *testing.T) {
	m := mem{"k1": "v1", "k2": "v2"}

	tests := []struct {
		b    Bucket
		key  string
		want bool
	}{
		{Bucket(""), "k1", true},
		{Bucket("k"), "k1", false},
		{Bucket("k"), "1", true},
		{Bucket("k1"), "", true},
	}
	for _, tt := range tests {
		got, err := tt.b.NewGetter(m).Has([]byte(tt.key))
		assert.Nil(t, err)
		assert.Equal(t, tt.want, got, "bucket %q key %q", tt.b, tt.key)
	}
}

func TestBucket_Putter(t *testing.T) {
	m := mem{}
	p := Bucket("ticks.").NewPutter(m)

	assert.Nil(t, p.Put([]byte("reward"), []byte("10")))
	assert.Equal(t, "10", m["ticks.reward"])

	assert.Nil(t, p.Delete([]byte("reward")))
	_, ok := m["ticks.reward"]
	assert.False(t, ok)
}

func TestBucket_IsNotFound(t *testing.T) {
	m := mem{}
	g := Bucket("b").NewGetter(m)
	_, err := g.Get([]byte("missing"))
	assert.True(t, g.IsNotFound(err))
}
