// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/firofarm/chef/builtin/reverts"
	"github.com/firofarm/chef/farm"
)

// Uint256 is a wrapper for storage and retrieval of an uint256. Similar to storing an uint256 in a smart contract.
// Set expects a value of at most 256 bits, Add refuses to go past that.
type Uint256 struct {
	context *Context
	pos     farm.Bytes32
}

func NewUint256(context *Context, slot farm.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: slot}
}

func (u *Uint256) Get() (*big.Int, error) {
	storage, err := u.context.state.GetStorage(u.context.address, u.pos)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(storage.Bytes()), nil
}

func (u *Uint256) Set(value *big.Int) {
	u.context.state.SetStorage(u.context.address, u.pos, farm.BytesToBytes32(value.Bytes()))
}

// Add adds value, it refuses to exceed 256 bits.
func (u *Uint256) Add(value *big.Int) error {
	storage, err := u.Get()
	if err != nil {
		return err
	}
	sum := new(big.Int).Add(storage, value)
	if sum.BitLen() > 256 {
		return reverts.ErrOverflow.With("uint256 overflow: %v + %v", storage, value)
	}
	u.Set(sum)
	return nil
}

// Sub subtracts value, it refuses to go below zero.
func (u *Uint256) Sub(value *big.Int) error {
	storage, err := u.Get()
	if err != nil {
		return err
	}
	if storage.Cmp(value) < 0 {
		return errors.Errorf("uint256 underflow: %v - %v", storage, value)
	}
	u.Set(storage.Sub(storage, value))
	return nil
}
