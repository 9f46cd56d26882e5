// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package locking

import (
	"math/big"
	"testing"

	"github.com/firofarm/chef/builtin/reverts"
	"github.com/firofarm/chef/builtin/token"
	"github.com/firofarm/chef/farm"
	"github.com/firofarm/chef/lvldb"
	"github.com/firofarm/chef/state"
	"github.com/firofarm/chef/xenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner = farm.BytesToAddress([]byte("owner"))
	chef  = farm.BytesToAddress([]byte("Chef"))
	user  = farm.BytesToAddress([]byte("user"))
	lp    = farm.BytesToAddress([]byte("LP"))
)

const delay = 86400

func env(caller farm.Address, time uint64) *xenv.Environment {
	return xenv.New(caller, &xenv.BlockContext{Number: time, Time: time})
}

func setup(t *testing.T) (*Locking, *token.Ledger) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.New(db, 0)
	ledger := token.New(farm.BytesToAddress([]byte("Tokens")), st)
	l := New(farm.BytesToAddress([]byte("Locking")), st, ledger)
	require.NoError(t, l.Initialize(env(owner, 0), chef))
	return l, ledger
}

// lock emulates the locker: it records the entry and hands over the tokens.
func lock(t *testing.T, l *Locking, ledger *token.Ledger, at uint64, amount int64) uint64 {
	idx, err := l.Lock(env(chef, at), lp, user, big.NewInt(amount), delay)
	require.NoError(t, err)
	require.NoError(t, ledger.Mint(lp, l.Address(), big.NewInt(amount)))
	return idx
}

func TestInitialize(t *testing.T) {
	l, _ := setup(t)
	assert.ErrorIs(t, l.Initialize(env(owner, 0), chef), reverts.ErrAlreadyInitialized)
	locker, err := l.Locker()
	require.NoError(t, err)
	assert.Equal(t, chef, locker)
	o, _ := l.Owner()
	assert.Equal(t, owner, o)
}

func TestOnlyLocker(t *testing.T) {
	l, _ := setup(t)
	_, err := l.Lock(env(user, 0), lp, user, big.NewInt(1), delay)
	assert.ErrorIs(t, err, reverts.ErrUnauthorized)
	assert.Equal(t, "only locker can lock", err.Error())

	_, err = l.Lock(env(chef, 0), lp, user, big.NewInt(0), delay)
	assert.ErrorIs(t, err, reverts.ErrInvalidAmount)
}

func TestSingleClaim(t *testing.T) {
	l, ledger := setup(t)
	idx := lock(t, l, ledger, 100, 3000)
	assert.Equal(t, uint64(0), idx)

	_, err := l.Unlock(env(user, 100+delay-1), user, idx)
	assert.ErrorIs(t, err, reverts.ErrNotYetUnlockable)

	e, err := l.Unlock(env(user, 100+delay), user, idx)
	require.NoError(t, err)
	assert.True(t, e.Withdrawn)
	assert.Equal(t, int64(3000), e.Amount.Int64())

	bal, _ := ledger.BalanceOf(lp, user)
	assert.Equal(t, int64(3000), bal.Int64())

	for _, at := range []uint64{100 + delay, 100 + 10*delay} {
		_, err = l.Unlock(env(user, at), user, idx)
		assert.ErrorIs(t, err, reverts.ErrNotYetUnlockable)
	}

	_, err = l.Unlock(env(user, 100+delay), user, 1)
	assert.ErrorIs(t, err, reverts.ErrLockNotFound)
}

func TestGetLockInfo(t *testing.T) {
	l, ledger := setup(t)
	lock(t, l, ledger, 0, 10)
	lock(t, l, ledger, 50, 20)
	lock(t, l, ledger, 100, 30)

	_, err := l.Unlock(env(user, 50+delay), user, 1)
	require.NoError(t, err)

	info, err := l.GetLockInfo(user)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, false}, info.Withdrawns)
	assert.Equal(t, []farm.Address{lp, lp, lp}, info.Tokens)
	assert.Equal(t, []uint64{delay, 50 + delay, 100 + delay}, info.UnlockableAts)
	require.Len(t, info.Amounts, 3)
	assert.Equal(t, int64(20), info.Amounts[1].Int64())

	n, err := l.LockCount(user)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)

	e, err := l.GetEntry(user, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), e.GrantedAt)
	_, err = l.GetEntry(user, 3)
	assert.ErrorIs(t, err, reverts.ErrLockNotFound)

	empty, err := l.GetLockInfo(owner)
	require.NoError(t, err)
	assert.Empty(t, empty.Withdrawns)
}
