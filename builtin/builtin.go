// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package builtin binds the farm contracts to their fixed addresses.
package builtin

import (
	"github.com/firofarm/chef/builtin/chef"
	"github.com/firofarm/chef/builtin/locking"
	"github.com/firofarm/chef/builtin/token"
	"github.com/firofarm/chef/builtin/vesting"
	"github.com/firofarm/chef/farm"
	"github.com/firofarm/chef/state"
)

// Builtin contracts binding.
var (
	Chef    = &chefContract{newContract("Chef")}
	Vesting = &vestingContract{newContract("Vesting")}
	Locking = &lockingContract{newContract("Locking")}
	Tokens  = &tokensContract{newContract("Tokens")}

	// FiroToken is the reward token.
	FiroToken = farm.BytesToAddress([]byte("FIRO"))
)

type (
	chefContract    struct{ *contract }
	vestingContract struct{ *contract }
	lockingContract struct{ *contract }
	tokensContract  struct{ *contract }
)

func (t *tokensContract) WithState(state *state.State) *token.Ledger {
	return token.New(t.Address, state)
}

func (v *vestingContract) WithState(state *state.State) *vesting.Vesting {
	return vesting.New(v.Address, state, Tokens.WithState(state))
}

func (l *lockingContract) WithState(state *state.State) *locking.Locking {
	return locking.New(l.Address, state, Tokens.WithState(state))
}

func (c *chefContract) WithState(state *state.State) *chef.Chef {
	return chef.New(c.Address, state, Vesting.WithState(state), Locking.WithState(state), Tokens.WithState(state))
}

// All returns every builtin contract.
func All() []*contract {
	return []*contract{Chef.contract, Vesting.contract, Locking.contract, Tokens.contract}
}
