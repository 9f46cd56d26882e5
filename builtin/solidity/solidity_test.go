// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firofarm/chef/builtin/reverts"
	"github.com/firofarm/chef/farm"
	"github.com/firofarm/chef/lvldb"
	"github.com/firofarm/chef/state"
)

type entry struct {
	Amount    *big.Int
	Withdrawn bool
	At        uint64
}

func newContext(t *testing.T) *Context {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewContext(farm.BytesToAddress([]byte("contract")), state.New(db, 0))
}

func TestMapping(t *testing.T) {
	ctx := newContext(t)
	m := NewMapping[farm.Address, entry](ctx, farm.BytesToBytes32([]byte("entries")))
	alice := farm.BytesToAddress([]byte("alice"))

	v, err := m.Get(alice)
	require.NoError(t, err)
	assert.Nil(t, v.Amount)
	assert.False(t, v.Withdrawn)

	require.NoError(t, m.Set(alice, entry{big.NewInt(42), true, 7}))
	v, err = m.Get(alice)
	require.NoError(t, err)
	assert.Equal(t, entry{big.NewInt(42), true, 7}, v)

	// other keys untouched
	other, err := m.Get(farm.BytesToAddress([]byte("bob")))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), other.At)

	m.Delete(alice)
	v, err = m.Get(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), v.At)
}

func TestRaw(t *testing.T) {
	ctx := newContext(t)
	r := NewRaw[entry](ctx, farm.BytesToBytes32([]byte("single")))

	ok, err := r.Exists()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Set(entry{big.NewInt(1), false, 2}))
	ok, err = r.Exists()
	require.NoError(t, err)
	assert.True(t, ok)

	v, err := r.Get()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), v.At)
	assert.Equal(t, big.NewInt(1), v.Amount)
}

func TestArray(t *testing.T) {
	ctx := newContext(t)
	a := NewArray[entry](ctx, farm.BytesToBytes32([]byte("list")))

	n, err := a.Len()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)

	for i := range 3 {
		idx, err := a.Push(entry{big.NewInt(int64(i * 10)), false, uint64(i)})
		require.NoError(t, err)
		assert.Equal(t, uint64(i), idx)
	}

	v, err := a.Get(1)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10), v.Amount)

	require.NoError(t, a.Set(1, entry{big.NewInt(11), true, 1}))
	all, err := a.All()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[1].Withdrawn)
	assert.Equal(t, big.NewInt(20), all[2].Amount)

	_, err = a.Get(3)
	assert.Error(t, err)
	assert.Error(t, a.Set(5, entry{}))
}

func TestUint256(t *testing.T) {
	ctx := newContext(t)
	u := NewUint256(ctx, farm.BytesToBytes32([]byte("total")))

	v, err := u.Get()
	require.NoError(t, err)
	assert.Equal(t, 0, v.Sign())

	require.NoError(t, u.Add(big.NewInt(100)))
	require.NoError(t, u.Sub(big.NewInt(40)))
	v, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(60), v)

	assert.Error(t, u.Sub(big.NewInt(61)))
	v, _ = u.Get()
	assert.Equal(t, big.NewInt(60), v)

	top := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(60))
	require.NoError(t, u.Add(new(big.Int).Sub(top, big.NewInt(1))))
	assert.ErrorIs(t, u.Add(big.NewInt(1)), reverts.ErrOverflow)
	v, _ = u.Get()
	assert.Equal(t, 256, v.BitLen())
}

func TestAddress(t *testing.T) {
	ctx := newContext(t)
	a := NewAddress(ctx, farm.BytesToBytes32([]byte("owner")))

	v, err := a.Get()
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	owner := farm.MustParseAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	a.Set(owner)
	v, err = a.Get()
	require.NoError(t, err)
	assert.Equal(t, owner, v)
}
