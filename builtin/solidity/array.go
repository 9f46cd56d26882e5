// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"encoding/binary"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/firofarm/chef/farm"
	"github.com/pkg/errors"
)

// Array is an append-friendly dynamic array, similar to a storage array in Solidity.
// Its length lives at the base position, element i at Slot(i, base).
type Array[V any] struct {
	context *Context
	length  *Uint256
	basePos farm.Bytes32
}

func NewArray[V any](context *Context, pos farm.Bytes32) *Array[V] {
	return &Array[V]{
		context: context,
		length:  NewUint256(context, pos),
		basePos: pos,
	}
}

func (a *Array[V]) position(index uint64) farm.Bytes32 {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], index)
	return Slot(b[:], a.basePos)
}

// Len returns the number of elements.
func (a *Array[V]) Len() (uint64, error) {
	n, err := a.length.Get()
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// Get returns element at index. It errors when index is out of range.
func (a *Array[V]) Get(index uint64) (value V, err error) {
	n, err := a.Len()
	if err != nil {
		return value, err
	}
	if index >= n {
		return value, errors.Errorf("index %v out of range [0, %v)", index, n)
	}
	err = a.context.state.DecodeStorage(a.context.address, a.position(index), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

// Set overwrites element at index.
func (a *Array[V]) Set(index uint64, value V) error {
	n, err := a.Len()
	if err != nil {
		return err
	}
	if index >= n {
		return errors.Errorf("index %v out of range [0, %v)", index, n)
	}
	return a.put(index, value)
}

// Push appends value and returns its index.
func (a *Array[V]) Push(value V) (uint64, error) {
	n, err := a.Len()
	if err != nil {
		return 0, err
	}
	if err := a.put(n, value); err != nil {
		return 0, err
	}
	a.length.Set(new(big.Int).SetUint64(n + 1))
	return n, nil
}

func (a *Array[V]) put(index uint64, value V) error {
	return a.context.state.EncodeStorage(a.context.address, a.position(index), func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

// All returns every element in order.
func (a *Array[V]) All() ([]V, error) {
	n, err := a.Len()
	if err != nil {
		return nil, err
	}
	out := make([]V, 0, n)
	for i := range n {
		v, err := a.Get(i)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
