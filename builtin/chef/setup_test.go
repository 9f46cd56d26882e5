// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chef

import (
	"math/big"
	"testing"

	"github.com/firofarm/chef/builtin/locking"
	"github.com/firofarm/chef/builtin/token"
	"github.com/firofarm/chef/builtin/vesting"
	"github.com/firofarm/chef/farm"
	"github.com/firofarm/chef/lvldb"
	"github.com/firofarm/chef/state"
	"github.com/firofarm/chef/xenv"
	"github.com/stretchr/testify/require"
)

var (
	owner = farm.BytesToAddress([]byte("owner"))
	dev   = farm.BytesToAddress([]byte("dev"))
	user1 = farm.BytesToAddress([]byte("user1"))
	user2 = farm.BytesToAddress([]byte("user2"))
	user3 = farm.BytesToAddress([]byte("user3"))
	firo  = farm.BytesToAddress([]byte("FIRO"))
	lp    = farm.BytesToAddress([]byte("LP"))
	lp2   = farm.BytesToAddress([]byte("LP2"))

	chefAddr    = farm.BytesToAddress([]byte("Chef"))
	vestingAddr = farm.BytesToAddress([]byte("Vesting"))
	lockingAddr = farm.BytesToAddress([]byte("Locking"))
	tokensAddr  = farm.BytesToAddress([]byte("Tokens"))
)

const (
	lockingDuration = 86400
	vestingDuration = 86400
)

type farmSetup struct {
	st      *state.State
	ledger  *token.Ledger
	vesting *vesting.Vesting
	locking *locking.Locking
	chef    *Chef
}

// at returns an env at reward tick n. The schedule clock runs in step with it.
func at(caller farm.Address, n uint64) *xenv.Environment {
	return xenv.New(caller, &xenv.BlockContext{Number: n, Time: n})
}

func defaultConfig() Config {
	return Config{
		DevAddr:         dev,
		RewardToken:     firo,
		RewardPerTick:   big.NewInt(1),
		StartTick:       100,
		EndTick:         100_000,
		LockingDuration: lockingDuration,
	}
}

func newFarm(t *testing.T, cfg Config) *farmSetup {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.New(db, 0)
	ledger := token.New(tokensAddr, st)
	v := vesting.New(vestingAddr, st, ledger)
	l := locking.New(lockingAddr, st, ledger)
	c := New(chefAddr, st, v, l, ledger)

	require.NoError(t, v.Initialize(at(owner, 0), firo, chefAddr, vestingDuration))
	require.NoError(t, l.Initialize(at(owner, 0), chefAddr))
	require.NoError(t, c.Initialize(at(owner, 0), cfg))
	require.NoError(t, ledger.Mint(firo, vestingAddr, big.NewInt(1_000_000_000)))

	for _, u := range []farm.Address{user1, user2, user3} {
		for _, tok := range []farm.Address{lp, lp2} {
			require.NoError(t, ledger.Mint(tok, u, big.NewInt(1_000_000)))
			require.NoError(t, ledger.Approve(tok, u, chefAddr, big.NewInt(1_000_000_000)))
		}
	}
	return &farmSetup{st, ledger, v, l, c}
}

func (f *farmSetup) addPool(t *testing.T, n uint64, alloc uint64, tok farm.Address) uint64 {
	pid, err := f.chef.AddPool(at(owner, n), alloc, tok, true)
	require.NoError(t, err)
	return pid
}

func (f *farmSetup) deposit(t *testing.T, n uint64, u farm.Address, pid uint64, amount int64) {
	require.NoError(t, f.chef.Deposit(at(u, n), pid, big.NewInt(amount)))
}

func (f *farmSetup) pending(t *testing.T, n uint64, u farm.Address, pid uint64) int64 {
	p, err := f.chef.PendingFiro(pid, u, n)
	require.NoError(t, err)
	return p.Int64()
}

func (f *farmSetup) balance(t *testing.T, tok, acc farm.Address) int64 {
	b, err := f.ledger.BalanceOf(tok, acc)
	require.NoError(t, err)
	return b.Int64()
}

func (f *farmSetup) granted(t *testing.T, u farm.Address) int64 {
	s, err := f.vesting.GetSchedule(u)
	require.NoError(t, err)
	return s.TotalGranted.Int64()
}
