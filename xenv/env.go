// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package xenv provides the environment a native contract call executes in.
package xenv

import (
	"fmt"
	"math/big"

	"github.com/firofarm/chef/farm"
)

// BlockContext holds the ticks a call observes.
// Number drives reward accrual, Time drives vesting and lock maturity.
type BlockContext struct {
	Number uint64
	Time   uint64
}

// Event is a record emitted by a contract during a call.
type Event struct {
	Contract farm.Address      `json:"contract"`
	Name     string            `json:"name"`
	Account  farm.Address      `json:"account"`
	Number   uint64            `json:"number"`
	Time     uint64            `json:"time"`
	Args     map[string]string `json:"args,omitempty"`
}

// Environment an env to execute native method.
type Environment struct {
	caller   farm.Address
	blockCtx *BlockContext
	events   []*Event
	parent   *Environment
}

// New create a new env.
func New(caller farm.Address, blockCtx *BlockContext) *Environment {
	return &Environment{
		caller:   caller,
		blockCtx: blockCtx,
	}
}

// Caller returns the account on whose behalf the call runs.
func (env *Environment) Caller() farm.Address        { return env.caller }
func (env *Environment) BlockContext() *BlockContext { return env.blockCtx }

// WithCaller derives an env for a nested call made by a contract.
// Events emitted by the nested call are collected by the parent.
func (env *Environment) WithCaller(caller farm.Address) *Environment {
	return &Environment{
		caller:   caller,
		blockCtx: env.blockCtx,
		parent:   env,
	}
}

// Emit records an event. args are key/value pairs, values are rendered with %v,
// or as decimal for *big.Int.
func (env *Environment) Emit(contract farm.Address, name string, account farm.Address, args ...any) {
	ev := &Event{
		Contract: contract,
		Name:     name,
		Account:  account,
		Number:   env.blockCtx.Number,
		Time:     env.blockCtx.Time,
	}
	if len(args) > 0 {
		ev.Args = make(map[string]string, len(args)/2)
		for i := 0; i+1 < len(args); i += 2 {
			key := fmt.Sprint(args[i])
			switch v := args[i+1].(type) {
			case *big.Int:
				ev.Args[key] = v.String()
			default:
				ev.Args[key] = fmt.Sprint(v)
			}
		}
	}
	root := env
	for root.parent != nil {
		root = root.parent
	}
	root.events = append(root.events, ev)
}

// Events returns events emitted so far, in order.
func (env *Environment) Events() []*Event {
	return env.events
}
