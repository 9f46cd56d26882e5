// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/firofarm/chef/farm"
)

type Key interface {
	Bytes() []byte
}

// Mapping is a key/value storage abstraction for built-in contracts, similar to the mapping in Solidity.
// Missing keys read as the zero value of V.
type Mapping[K Key, V any] struct {
	context *Context
	basePos farm.Bytes32
}

func NewMapping[K Key, V any](context *Context, pos farm.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

func (m *Mapping[K, V]) position(key K) farm.Bytes32 {
	return Slot(key.Bytes(), m.basePos)
}

func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	err = m.context.state.DecodeStorage(m.context.address, m.position(key), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

func (m *Mapping[K, V]) Set(key K, value V) error {
	return m.context.state.EncodeStorage(m.context.address, m.position(key), func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

func (m *Mapping[K, V]) Delete(key K) {
	m.context.state.SetRawStorage(m.context.address, m.position(key), nil)
}
