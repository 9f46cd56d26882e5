// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token is the fungible token collaborator of the farm.
// Ledger is a native multi-asset implementation kept in the same state as the contracts,
// so token moves roll back together with the call that made them.
package token

import (
	"math/big"

	"github.com/firofarm/chef/builtin/reverts"
	"github.com/firofarm/chef/builtin/solidity"
	"github.com/firofarm/chef/farm"
	"github.com/firofarm/chef/log"
	"github.com/firofarm/chef/state"
)

var logger = log.WithContext("pkg", "token")

// Token is the capability the farm consumes. Each call either fully succeeds or fails.
type Token interface {
	Address() farm.Address
	Transfer(from, to farm.Address, amount *big.Int) error
	TransferFrom(spender, from, to farm.Address, amount *big.Int) error
	Mint(to farm.Address, amount *big.Int) error
	BalanceOf(addr farm.Address) (*big.Int, error)
}

// Resolver resolves a token by its address.
type Resolver interface {
	Token(addr farm.Address) Token
}

var (
	balancePrefix   = []byte("balance")
	allowancePrefix = []byte("allowance")
	supplyPrefix    = []byte("supply")
)

// Ledger keeps balances, allowances and supply of any number of tokens.
type Ledger struct {
	context *solidity.Context
}

var _ Resolver = (*Ledger)(nil)

func New(addr farm.Address, state *state.State) *Ledger {
	return &Ledger{solidity.NewContext(addr, state)}
}

// Address returns the address the ledger storage lives under.
func (l *Ledger) Address() farm.Address {
	return l.context.Address()
}

func (l *Ledger) balance(tok, account farm.Address) *solidity.Uint256 {
	return solidity.NewUint256(l.context, farm.Blake2b(balancePrefix, tok[:], account[:]))
}

func (l *Ledger) allowance(tok, owner, spender farm.Address) *solidity.Uint256 {
	return solidity.NewUint256(l.context, farm.Blake2b(allowancePrefix, tok[:], owner[:], spender[:]))
}

func (l *Ledger) supply(tok farm.Address) *solidity.Uint256 {
	return solidity.NewUint256(l.context, farm.Blake2b(supplyPrefix, tok[:]))
}

// Token binds the ledger to one asset.
func (l *Ledger) Token(addr farm.Address) Token {
	return &asset{l, addr}
}

// BalanceOf returns balance of account in tok.
func (l *Ledger) BalanceOf(tok, account farm.Address) (*big.Int, error) {
	return l.balance(tok, account).Get()
}

// TotalSupply returns the minted amount of tok.
func (l *Ledger) TotalSupply(tok farm.Address) (*big.Int, error) {
	return l.supply(tok).Get()
}

// Allowance returns how much spender may move out of owner.
func (l *Ledger) Allowance(tok, owner, spender farm.Address) (*big.Int, error) {
	return l.allowance(tok, owner, spender).Get()
}

// Approve sets the allowance of spender over owner's balance.
func (l *Ledger) Approve(tok, owner, spender farm.Address, amount *big.Int) error {
	if amount.Sign() < 0 || amount.BitLen() > 256 {
		return reverts.ErrInvalidAmount
	}
	l.allowance(tok, owner, spender).Set(amount)
	return nil
}

// Mint creates amount of tok for to. A supply past 256 bits is refused, so no
// balance can wrap.
func (l *Ledger) Mint(tok, to farm.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return reverts.ErrInvalidAmount
	}
	if amount.Sign() == 0 {
		return nil
	}
	if err := l.supply(tok).Add(amount); err != nil {
		return err
	}
	if err := l.balance(tok, to).Add(amount); err != nil {
		return err
	}
	logger.Debug("mint", "token", tok, "to", to, "amount", amount)
	return nil
}

// Transfer moves amount of tok from one account to another.
func (l *Ledger) Transfer(tok, from, to farm.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return reverts.ErrInvalidAmount
	}
	if amount.Sign() == 0 {
		return nil
	}
	bal, err := l.balance(tok, from).Get()
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return reverts.ErrInsufficientBalance.With("insufficient %v balance of %v: have %v, want %v", tok, from, bal, amount)
	}
	l.balance(tok, from).Set(bal.Sub(bal, amount))
	if err := l.balance(tok, to).Add(amount); err != nil {
		return err
	}
	logger.Debug("transfer", "token", tok, "from", from, "to", to, "amount", amount)
	return nil
}

// TransferFrom moves amount out of from on behalf of spender, consuming allowance.
func (l *Ledger) TransferFrom(tok, spender, from, to farm.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return reverts.ErrInvalidAmount
	}
	if spender != from {
		allowed, err := l.Allowance(tok, from, spender)
		if err != nil {
			return err
		}
		if allowed.Cmp(amount) < 0 {
			return reverts.ErrInsufficientAllowance.With("insufficient allowance of %v over %v: have %v, want %v", spender, from, allowed, amount)
		}
		l.allowance(tok, from, spender).Set(allowed.Sub(allowed, amount))
	}
	return l.Transfer(tok, from, to, amount)
}

type asset struct {
	ledger *Ledger
	addr   farm.Address
}

func (a *asset) Address() farm.Address { return a.addr }

func (a *asset) Transfer(from, to farm.Address, amount *big.Int) error {
	return a.ledger.Transfer(a.addr, from, to, amount)
}

func (a *asset) TransferFrom(spender, from, to farm.Address, amount *big.Int) error {
	return a.ledger.TransferFrom(a.addr, spender, from, to, amount)
}

func (a *asset) Mint(to farm.Address, amount *big.Int) error {
	return a.ledger.Mint(a.addr, to, amount)
}

func (a *asset) BalanceOf(addr farm.Address) (*big.Int, error) {
	return a.ledger.BalanceOf(a.addr, addr)
}
