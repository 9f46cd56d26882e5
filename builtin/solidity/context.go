// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package solidity provides typed storage slots for native contracts,
// laid out the way a solidity contract lays out its state variables.
package solidity

import (
	"github.com/firofarm/chef/farm"
	"github.com/firofarm/chef/state"
)

// Context binds storage helpers to a contract address and a state.
type Context struct {
	address farm.Address
	state   *state.State
}

func NewContext(address farm.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) Address() farm.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}

// Slot derives a child position from a key and a base position.
func Slot(key []byte, base farm.Bytes32) farm.Bytes32 {
	return farm.Blake2b(key, base.Bytes())
}
