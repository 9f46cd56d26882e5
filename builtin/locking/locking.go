// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package locking implements the contract holding withdrawn principal until it matures.
package locking

import (
	"math/big"

	"github.com/firofarm/chef/builtin/reverts"
	"github.com/firofarm/chef/builtin/solidity"
	"github.com/firofarm/chef/builtin/token"
	"github.com/firofarm/chef/farm"
	"github.com/firofarm/chef/log"
	"github.com/firofarm/chef/state"
	"github.com/firofarm/chef/xenv"
)

var logger = log.WithContext("pkg", "locking")

var (
	slotOwner   = farm.BytesToBytes32([]byte("owner"))
	slotLocker  = farm.BytesToBytes32([]byte("locker"))
	slotEntries = farm.BytesToBytes32([]byte("entries"))
)

// Locking keeps an append-only list of lock entries per beneficiary.
type Locking struct {
	addr    farm.Address
	context *solidity.Context
	owner   *solidity.Address
	locker  *solidity.Address
	tokens  token.Resolver
}

func New(addr farm.Address, state *state.State, tokens token.Resolver) *Locking {
	ctx := solidity.NewContext(addr, state)
	return &Locking{
		addr:    addr,
		context: ctx,
		owner:   solidity.NewAddress(ctx, slotOwner),
		locker:  solidity.NewAddress(ctx, slotLocker),
		tokens:  tokens,
	}
}

func (l *Locking) Address() farm.Address { return l.addr }

func (l *Locking) entries(beneficiary farm.Address) *solidity.Array[Entry] {
	return solidity.NewArray[Entry](l.context, solidity.Slot(beneficiary.Bytes(), slotEntries))
}

// Initialize sets up the contract once. The caller becomes the owner.
func (l *Locking) Initialize(env *xenv.Environment, locker farm.Address) error {
	owner, err := l.owner.Get()
	if err != nil {
		return err
	}
	if !owner.IsZero() {
		return reverts.ErrAlreadyInitialized
	}
	l.owner.Set(env.Caller())
	l.locker.Set(locker)
	return nil
}

func (l *Locking) Owner() (farm.Address, error)  { return l.owner.Get() }
func (l *Locking) Locker() (farm.Address, error) { return l.locker.Get() }

// Lock appends an entry maturing delay after now. Only the locker may lock,
// and it is expected to hand the tokens over to the contract.
func (l *Locking) Lock(env *xenv.Environment, tok, beneficiary farm.Address, amount *big.Int, delay uint64) (uint64, error) {
	locker, err := l.locker.Get()
	if err != nil {
		return 0, err
	}
	if env.Caller() != locker {
		return 0, reverts.ErrUnauthorized.With("only locker can lock")
	}
	if amount.Sign() <= 0 {
		return 0, reverts.ErrInvalidAmount
	}

	now := env.BlockContext().Time
	index, err := l.entries(beneficiary).Push(Entry{
		Token:        tok,
		Amount:       new(big.Int).Set(amount),
		GrantedAt:    now,
		UnlockableAt: now + delay,
	})
	if err != nil {
		return 0, err
	}
	env.Emit(l.addr, "Locked", beneficiary, "index", index, "token", tok, "amount", amount, "unlockableAt", now+delay)
	logger.Debug("locked", "beneficiary", beneficiary, "index", index, "amount", amount)
	return index, nil
}

// Unlock claims entry index of beneficiary. It succeeds once per entry, after maturity.
func (l *Locking) Unlock(env *xenv.Environment, beneficiary farm.Address, index uint64) (*Entry, error) {
	entries := l.entries(beneficiary)
	n, err := entries.Len()
	if err != nil {
		return nil, err
	}
	if index >= n {
		return nil, reverts.ErrLockNotFound.With("lock entry %v not found for %v", index, beneficiary)
	}
	entry, err := entries.Get(index)
	if err != nil {
		return nil, err
	}
	if !entry.Unlockable(env.BlockContext().Time) {
		return nil, reverts.ErrNotYetUnlockable.With("Already withdrawn or not unlockable yet")
	}

	entry.Withdrawn = true
	if err := entries.Set(index, entry); err != nil {
		return nil, err
	}
	env.Emit(l.addr, "Unlocked", beneficiary, "index", index, "token", entry.Token, "amount", entry.Amount)
	// external transfer goes last
	if err := l.tokens.Token(entry.Token).Transfer(l.addr, beneficiary, entry.Amount); err != nil {
		return nil, err
	}
	return &entry, nil
}

// LockCount returns the number of entries of beneficiary.
func (l *Locking) LockCount(beneficiary farm.Address) (uint64, error) {
	return l.entries(beneficiary).Len()
}

// GetEntry returns entry index of beneficiary.
func (l *Locking) GetEntry(beneficiary farm.Address, index uint64) (*Entry, error) {
	entries := l.entries(beneficiary)
	n, err := entries.Len()
	if err != nil {
		return nil, err
	}
	if index >= n {
		return nil, reverts.ErrLockNotFound.With("lock entry %v not found for %v", index, beneficiary)
	}
	e, err := entries.Get(index)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetLockInfo lists every entry of beneficiary in grant order.
func (l *Locking) GetLockInfo(beneficiary farm.Address) (*Info, error) {
	all, err := l.entries(beneficiary).All()
	if err != nil {
		return nil, err
	}
	info := &Info{
		Withdrawns:    make([]bool, 0, len(all)),
		Tokens:        make([]farm.Address, 0, len(all)),
		UnlockableAts: make([]uint64, 0, len(all)),
		Amounts:       make([]*big.Int, 0, len(all)),
	}
	for _, e := range all {
		info.Withdrawns = append(info.Withdrawns, e.Withdrawn)
		info.Tokens = append(info.Tokens, e.Token)
		info.UnlockableAts = append(info.UnlockableAts, e.UnlockableAt)
		info.Amounts = append(info.Amounts, e.Amount)
	}
	return info, nil
}
