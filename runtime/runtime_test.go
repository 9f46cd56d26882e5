// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime_test

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firofarm/chef/builtin"
	"github.com/firofarm/chef/builtin/chef"
	"github.com/firofarm/chef/builtin/reverts"
	"github.com/firofarm/chef/clock"
	"github.com/firofarm/chef/eventdb"
	"github.com/firofarm/chef/farm"
	"github.com/firofarm/chef/kv"
	"github.com/firofarm/chef/lvldb"
	"github.com/firofarm/chef/runtime"
	"github.com/firofarm/chef/xenv"
)

var (
	owner = farm.BytesToAddress([]byte("owner"))
	dev   = farm.BytesToAddress([]byte("dev"))
	alice = farm.BytesToAddress([]byte("alice"))
	bob   = farm.BytesToAddress([]byte("bob"))
	lp    = farm.BytesToAddress([]byte("LP"))
)

type testRuntime struct {
	*runtime.Runtime
	store  kv.Store
	reward *clock.Manual
	sched  *clock.Manual
	events *eventdb.EventDB
}

func newRuntime(t *testing.T) *testRuntime {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	events, err := eventdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { events.Close() })

	tr := &testRuntime{store: db, reward: clock.NewManual(0), sched: clock.NewManual(0), events: events}
	tr.Runtime, err = runtime.New(db, runtime.Options{
		RewardClock:   tr.reward,
		ScheduleClock: tr.sched,
		EventDB:       events,
	})
	require.NoError(t, err)

	_, err = tr.Execute(owner, "init", func(env *xenv.Environment, c *runtime.Contracts) error {
		if err := c.Vesting.Initialize(env, builtin.FiroToken, builtin.Chef.Address, 86400); err != nil {
			return err
		}
		if err := c.Locking.Initialize(env, builtin.Chef.Address); err != nil {
			return err
		}
		if err := c.Chef.Initialize(env, chef.Config{
			DevAddr:         dev,
			RewardToken:     builtin.FiroToken,
			RewardPerTick:   big.NewInt(1),
			StartTick:       100,
			EndTick:         100_000,
			LockingDuration: 86400,
		}); err != nil {
			return err
		}
		if err := c.Tokens.Mint(builtin.FiroToken, builtin.Vesting.Address, big.NewInt(1_000_000)); err != nil {
			return err
		}
		for _, u := range []farm.Address{alice, bob} {
			if err := c.Tokens.Mint(lp, u, big.NewInt(10_000)); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	return tr
}

func TestScenario(t *testing.T) {
	rt := newRuntime(t)
	pid, err := rt.AddPool(owner, 1, lp, true)
	require.NoError(t, err)

	_, err = rt.Approve(alice, lp, builtin.Chef.Address, big.NewInt(3000))
	require.NoError(t, err)
	_, err = rt.Approve(bob, lp, builtin.Chef.Address, big.NewInt(6000))
	require.NoError(t, err)

	rt.reward.Set(10)
	_, err = rt.Deposit(alice, pid, big.NewInt(3000))
	require.NoError(t, err)
	_, err = rt.Deposit(bob, pid, big.NewInt(6000))
	require.NoError(t, err)

	rt.reward.Set(1100)
	p, err := rt.PendingFiro(pid, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(333), p.Int64())
	p, err = rt.PendingFiro(pid, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(666), p.Int64())

	// reads do not persist accrual
	pool, err := rt.GetPool(pid)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), pool.LastRewardTick)

	rt.sched.Set(1000)
	_, err = rt.Withdraw(alice, pid, big.NewInt(3000))
	require.NoError(t, err)
	st, err := rt.GetVesting(alice)
	require.NoError(t, err)
	assert.Equal(t, int64(333), st.Schedule.TotalGranted.Int64())
	assert.Equal(t, 0, st.Releasable.Sign())

	info, err := rt.GetLockInfo(alice)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1000 + 86400}, info.UnlockableAts)

	_, err = rt.Unlock(alice, alice, 0)
	assert.ErrorIs(t, err, reverts.ErrNotYetUnlockable)

	rt.sched.Set(1000 + 86400)
	entry, err := rt.Unlock(alice, alice, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), entry.Amount.Int64())

	released, err := rt.UnlockVesting(alice, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(333), released.Int64())
	bal, err := rt.BalanceOf(builtin.FiroToken, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(333), bal.Int64())
}

func TestFailedCallReverts(t *testing.T) {
	rt := newRuntime(t)
	pid, err := rt.AddPool(owner, 1, lp, true)
	require.NoError(t, err)
	rt.reward.Set(10)

	// the ledger row is written before the token pull fails
	_, err = rt.Deposit(alice, pid, big.NewInt(3000))
	assert.ErrorIs(t, err, reverts.ErrInsufficientAllowance)

	u, err := rt.GetUserInfo(pid, alice)
	require.NoError(t, err)
	assert.Equal(t, 0, u.Amount.Sign())
	pool, err := rt.GetPool(pid)
	require.NoError(t, err)
	assert.Equal(t, 0, pool.TotalStaked.Sign())
	bal, err := rt.BalanceOf(lp, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(10_000), bal.Int64())

	evs, err := rt.events.Filter(&eventdb.Filter{Names: []string{"Deposit"}})
	require.NoError(t, err)
	assert.Empty(t, evs)

	_, err = rt.Mint(alice, lp, alice, big.NewInt(1))
	assert.ErrorIs(t, err, reverts.ErrUnauthorized)
}

func TestTicksPersistAndClamp(t *testing.T) {
	rt := newRuntime(t)
	rt.reward.Set(500)
	rt.sched.Set(7000)
	_, err := rt.AddPool(owner, 1, lp, true)
	require.NoError(t, err)

	// a fresh runtime on the same store never runs behind the committed ticks
	again, err := runtime.New(rt.store, runtime.Options{
		RewardClock:   clock.Func(func() uint64 { return 3 }),
		ScheduleClock: clock.Func(func() uint64 { return 4 }),
	})
	require.NoError(t, err)
	ctx := again.BlockContext()
	assert.Equal(t, uint64(500), ctx.Number)
	assert.Equal(t, uint64(7000), ctx.Time)

	pool, err := again.GetPool(0)
	require.NoError(t, err)
	assert.Equal(t, lp, pool.StakeToken)
	assert.Equal(t, uint64(500), pool.LastRewardTick)
}

func TestEventsStoredAndPublished(t *testing.T) {
	rt := newRuntime(t)
	ch := make(chan []*eventdb.Event, 4)
	sub := rt.SubscribeEvents(ch)
	defer sub.Unsubscribe()

	receipt, err := rt.Execute(owner, "addPool", func(env *xenv.Environment, c *runtime.Contracts) error {
		_, err := c.Chef.AddPool(env, 1, lp, false)
		return err
	})
	require.NoError(t, err)
	require.Len(t, receipt.Events, 1)
	assert.Equal(t, "PoolAdded", receipt.Events[0].Name)
	assert.Equal(t, "addPool", receipt.Events[0].Op)
	assert.NotZero(t, receipt.Events[0].ID)

	select {
	case evs := <-ch:
		assert.Equal(t, receipt.Events, evs)
	case <-time.After(time.Second):
		t.Fatal("no events published")
	}

	evs, err := rt.events.Filter(&eventdb.Filter{Contract: &builtin.Chef.Address})
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, owner, evs[0].Caller)
}
