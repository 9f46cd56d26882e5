// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package chef implements the reward ledger of the farm: pools of staked tokens
// accruing reward per share over the active window. Due rewards are granted to the
// vesting contract and withdrawn principal is locked in the locking contract.
package chef

import (
	"encoding/binary"
	"math/big"

	"github.com/firofarm/chef/builtin/locking"
	"github.com/firofarm/chef/builtin/reverts"
	"github.com/firofarm/chef/builtin/solidity"
	"github.com/firofarm/chef/builtin/token"
	"github.com/firofarm/chef/builtin/vesting"
	"github.com/firofarm/chef/farm"
	"github.com/firofarm/chef/log"
	"github.com/firofarm/chef/state"
	"github.com/firofarm/chef/xenv"
)

var logger = log.WithContext("pkg", "chef")

var (
	slotOwner         = farm.BytesToBytes32([]byte("owner"))
	slotDevAddr       = farm.BytesToBytes32([]byte("dev-addr"))
	slotRewardToken   = farm.BytesToBytes32([]byte("reward-token"))
	slotRewardPerTick = farm.BytesToBytes32([]byte("reward-per-tick"))
	slotWindow        = farm.BytesToBytes32([]byte("window"))
	slotParams        = farm.BytesToBytes32([]byte("params"))
	slotPools         = farm.BytesToBytes32([]byte("pools"))
	slotPoolIndex     = farm.BytesToBytes32([]byte("pool-index"))
	slotUsers         = farm.BytesToBytes32([]byte("users"))
)

// Chef is the reward ledger.
type Chef struct {
	addr          farm.Address
	owner         *solidity.Address
	devAddr       *solidity.Address
	rewardToken   *solidity.Address
	rewardPerTick *solidity.Uint256
	window        *solidity.Raw[Window]
	params        *solidity.Raw[params]
	pools         *solidity.Array[Pool]
	poolIndex     *solidity.Mapping[farm.Address, uint64] // stake token => index + 1
	users         *solidity.Mapping[farm.Bytes32, UserInfo]

	vesting *vesting.Vesting
	locking *locking.Locking
	tokens  token.Resolver
}

func New(addr farm.Address, state *state.State, vesting *vesting.Vesting, locking *locking.Locking, tokens token.Resolver) *Chef {
	ctx := solidity.NewContext(addr, state)
	return &Chef{
		addr:          addr,
		owner:         solidity.NewAddress(ctx, slotOwner),
		devAddr:       solidity.NewAddress(ctx, slotDevAddr),
		rewardToken:   solidity.NewAddress(ctx, slotRewardToken),
		rewardPerTick: solidity.NewUint256(ctx, slotRewardPerTick),
		window:        solidity.NewRaw[Window](ctx, slotWindow),
		params:        solidity.NewRaw[params](ctx, slotParams),
		pools:         solidity.NewArray[Pool](ctx, slotPools),
		poolIndex:     solidity.NewMapping[farm.Address, uint64](ctx, slotPoolIndex),
		users:         solidity.NewMapping[farm.Bytes32, UserInfo](ctx, slotUsers),
		vesting:       vesting,
		locking:       locking,
		tokens:        tokens,
	}
}

func (c *Chef) Address() farm.Address { return c.addr }

func userKey(pid uint64, account farm.Address) farm.Bytes32 {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], pid)
	return farm.Blake2b(b[:], account[:])
}

// effects are token moves run once every ledger row of a call is written.
type effects []func() error

func (e *effects) add(f func() error) { *e = append(*e, f) }

func (e effects) run() error {
	for _, f := range e {
		if err := f(); err != nil {
			return err
		}
	}
	return nil
}

// Initialize sets up the chef once. The caller becomes the owner.
func (c *Chef) Initialize(env *xenv.Environment, cfg Config) error {
	owner, err := c.owner.Get()
	if err != nil {
		return err
	}
	if !owner.IsZero() {
		return reverts.ErrAlreadyInitialized
	}
	if cfg.StartTick >= cfg.EndTick {
		return reverts.ErrInvalidWindow
	}
	if cfg.RewardPerTick == nil || cfg.RewardPerTick.Sign() < 0 {
		return reverts.ErrInvalidAmount.With("invalid reward per tick")
	}
	if cfg.DevCutDenominator != 0 && cfg.DevCutNumerator > cfg.DevCutDenominator {
		return reverts.ErrInvalidAmount.With("dev cut above 100%%")
	}

	c.owner.Set(env.Caller())
	c.devAddr.Set(cfg.DevAddr)
	c.rewardToken.Set(cfg.RewardToken)
	c.rewardPerTick.Set(cfg.RewardPerTick)
	if err := c.window.Set(Window{cfg.StartTick, cfg.EndTick}); err != nil {
		return err
	}
	return c.params.Set(params{
		LockingDuration:    cfg.LockingDuration,
		VestingStartOffset: cfg.VestingStartOffset,
		VestingCliffOffset: cfg.VestingCliffOffset,
		DevCutNumerator:    cfg.DevCutNumerator,
		DevCutDenominator:  cfg.DevCutDenominator,
	})
}

func (c *Chef) Owner() (farm.Address, error)       { return c.owner.Get() }
func (c *Chef) DevAddr() (farm.Address, error)     { return c.devAddr.Get() }
func (c *Chef) RewardToken() (farm.Address, error) { return c.rewardToken.Get() }
func (c *Chef) RewardPerTick() (*big.Int, error)   { return c.rewardPerTick.Get() }
func (c *Chef) Window() (Window, error)            { return c.window.Get() }

func (c *Chef) StartTick() (uint64, error) {
	w, err := c.window.Get()
	return w.Start, err
}

func (c *Chef) EndTick() (uint64, error) {
	w, err := c.window.Get()
	return w.End, err
}

// TotalAllocPoint returns the sum of alloc points of all pools.
func (c *Chef) TotalAllocPoint() (uint64, error) {
	p, err := c.params.Get()
	return p.TotalAllocPoint, err
}

// DevCut returns the developer cut as numerator and denominator.
func (c *Chef) DevCut() (uint64, uint64, error) {
	p, err := c.params.Get()
	return p.DevCutNumerator, p.DevCutDenominator, err
}

// LockingDuration returns how long withdrawn principal stays locked.
func (c *Chef) LockingDuration() (uint64, error) {
	p, err := c.params.Get()
	return p.LockingDuration, err
}

// PoolLength returns the number of pools.
func (c *Chef) PoolLength() (uint64, error) {
	return c.pools.Len()
}

// GetPool returns pool pid.
func (c *Chef) GetPool(pid uint64) (*Pool, error) {
	n, err := c.pools.Len()
	if err != nil {
		return nil, err
	}
	if pid >= n {
		return nil, reverts.ErrPoolNotFound.With("pool %v not found", pid)
	}
	p, err := c.pools.Get(pid)
	if err != nil {
		return nil, err
	}
	p.normalize()
	return &p, nil
}

// PoolOf returns the index of the pool staking tok.
func (c *Chef) PoolOf(tok farm.Address) (uint64, bool, error) {
	v, err := c.poolIndex.Get(tok)
	if err != nil {
		return 0, false, err
	}
	if v == 0 {
		return 0, false, nil
	}
	return v - 1, true, nil
}

// GetUserInfo returns the stake of account in pool pid.
func (c *Chef) GetUserInfo(pid uint64, account farm.Address) (*UserInfo, error) {
	if _, err := c.GetPool(pid); err != nil {
		return nil, err
	}
	return c.getUser(pid, account)
}

func (c *Chef) getUser(pid uint64, account farm.Address) (*UserInfo, error) {
	u, err := c.users.Get(userKey(pid, account))
	if err != nil {
		return nil, err
	}
	u.normalize()
	return &u, nil
}

func (c *Chef) setUser(pid uint64, account farm.Address, u *UserInfo) error {
	return c.users.Set(userKey(pid, account), *u)
}

// accrual is the result of bringing a pool up to a tick.
type accrual struct {
	reward *big.Int // to stakers
	devCut *big.Int
}

// accrue brings pool p up to now in memory.
func (c *Chef) accrue(p *Pool, now uint64) (*accrual, error) {
	out := &accrual{new(big.Int), new(big.Int)}
	if now <= p.LastRewardTick {
		return out, nil
	}
	prm, err := c.params.Get()
	if err != nil {
		return nil, err
	}
	if p.TotalStaked.Sign() == 0 || prm.TotalAllocPoint == 0 || p.AllocPoint == 0 {
		p.LastRewardTick = now
		return out, nil
	}
	w, err := c.window.Get()
	if err != nil {
		return nil, err
	}
	perTick, err := c.rewardPerTick.Get()
	if err != nil {
		return nil, err
	}

	multiplier := overlap(p.LastRewardTick, now, w.Start, w.End)
	reward := new(big.Int).SetUint64(multiplier)
	reward.Mul(reward, perTick)
	reward.Mul(reward, new(big.Int).SetUint64(p.AllocPoint))
	reward.Quo(reward, new(big.Int).SetUint64(prm.TotalAllocPoint))

	if prm.DevCutNumerator > 0 && prm.DevCutDenominator > 0 {
		out.devCut.Mul(reward, new(big.Int).SetUint64(prm.DevCutNumerator))
		out.devCut.Quo(out.devCut, new(big.Int).SetUint64(prm.DevCutDenominator))
		reward.Sub(reward, out.devCut)
	}
	out.reward = reward

	p.AccRewardPerShare = new(big.Int).Add(p.AccRewardPerShare, accruedPerShare(reward, p.TotalStaked))
	p.Rewarded = new(big.Int).Add(p.Rewarded, reward)
	p.LastRewardTick = now
	return out, nil
}

// updatePool accrues pool pid to the current tick, persists it and queues the dev cut mint.
func (c *Chef) updatePool(env *xenv.Environment, pid uint64, fx *effects) (*Pool, error) {
	p, err := c.GetPool(pid)
	if err != nil {
		return nil, err
	}
	now := env.BlockContext().Number
	if now <= p.LastRewardTick {
		return p, nil
	}
	acc, err := c.accrue(p, now)
	if err != nil {
		return nil, err
	}
	if err := c.pools.Set(pid, *p); err != nil {
		return nil, err
	}
	if acc.devCut.Sign() > 0 {
		devAddr, err := c.devAddr.Get()
		if err != nil {
			return nil, err
		}
		rewardToken, err := c.rewardToken.Get()
		if err != nil {
			return nil, err
		}
		devCut := acc.devCut
		fx.add(func() error { return c.tokens.Token(rewardToken).Mint(devAddr, devCut) })
	}
	if acc.reward.Sign() > 0 || acc.devCut.Sign() > 0 {
		env.Emit(c.addr, "PoolUpdated", farm.Address{},
			"pid", pid,
			"reward", acc.reward,
			"devCut", acc.devCut,
			"accRewardPerShare", p.AccRewardPerShare)
	}
	return p, nil
}

func (c *Chef) massUpdate(env *xenv.Environment, fx *effects) error {
	n, err := c.pools.Len()
	if err != nil {
		return err
	}
	for pid := range n {
		if _, err := c.updatePool(env, pid, fx); err != nil {
			return err
		}
	}
	return nil
}

// UpdatePool brings the accumulator of pool pid up to the current tick. Anyone may call it.
func (c *Chef) UpdatePool(env *xenv.Environment, pid uint64) error {
	var fx effects
	if _, err := c.updatePool(env, pid, &fx); err != nil {
		return err
	}
	return fx.run()
}

// MassUpdatePools updates every pool.
func (c *Chef) MassUpdatePools(env *xenv.Environment) error {
	var fx effects
	if err := c.massUpdate(env, &fx); err != nil {
		return err
	}
	return fx.run()
}

// PendingFiro projects the reward account would settle in pool pid at now, without mutating state.
func (c *Chef) PendingFiro(pid uint64, account farm.Address, now uint64) (*big.Int, error) {
	p, err := c.GetPool(pid)
	if err != nil {
		return nil, err
	}
	u, err := c.getUser(pid, account)
	if err != nil {
		return nil, err
	}
	if _, err := c.accrue(p, now); err != nil {
		return nil, err
	}
	return pendingOf(u, p.AccRewardPerShare), nil
}

// settle grants what account has pending in pool p to the vesting contract.
func (c *Chef) settle(env *xenv.Environment, p *Pool, u *UserInfo, account farm.Address) (*big.Int, error) {
	if u.Amount.Sign() == 0 {
		return new(big.Int), nil
	}
	pending := pendingOf(u, p.AccRewardPerShare)
	if pending.Sign() == 0 {
		return pending, nil
	}
	prm, err := c.params.Get()
	if err != nil {
		return nil, err
	}
	if err := c.vesting.Grant(env.WithCaller(c.addr), account, pending, prm.VestingStartOffset, prm.VestingCliffOffset); err != nil {
		return nil, err
	}
	return pending, nil
}

// Deposit stakes amount of the pool's stake token for the caller and settles due reward.
// The caller must have approved the chef to pull amount.
func (c *Chef) Deposit(env *xenv.Environment, pid uint64, amount *big.Int) error {
	if amount.Sign() < 0 {
		return reverts.ErrInvalidAmount
	}
	var fx effects
	p, err := c.updatePool(env, pid, &fx)
	if err != nil {
		return err
	}
	caller := env.Caller()
	u, err := c.getUser(pid, caller)
	if err != nil {
		return err
	}
	reward, err := c.settle(env, p, u, caller)
	if err != nil {
		return err
	}

	u.Amount = new(big.Int).Add(u.Amount, amount)
	u.RewardDebt = settled(u.Amount, p.AccRewardPerShare)
	p.TotalStaked = new(big.Int).Add(p.TotalStaked, amount)
	if err := c.setUser(pid, caller, u); err != nil {
		return err
	}
	if err := c.pools.Set(pid, *p); err != nil {
		return err
	}
	if amount.Sign() > 0 {
		stake := c.tokens.Token(p.StakeToken)
		fx.add(func() error { return stake.TransferFrom(c.addr, caller, c.addr, amount) })
	}

	env.Emit(c.addr, "Deposit", caller, "pid", pid, "amount", amount, "reward", reward)
	logger.Debug("deposit", "pid", pid, "account", caller, "amount", amount, "reward", reward)
	return fx.run()
}

// Withdraw unstakes amount for the caller and settles due reward.
// The principal is not returned but locked for the locking duration.
func (c *Chef) Withdraw(env *xenv.Environment, pid uint64, amount *big.Int) error {
	if amount.Sign() < 0 {
		return reverts.ErrInvalidAmount
	}
	var fx effects
	p, err := c.updatePool(env, pid, &fx)
	if err != nil {
		return err
	}
	caller := env.Caller()
	u, err := c.getUser(pid, caller)
	if err != nil {
		return err
	}
	if u.Amount.Cmp(amount) < 0 {
		return reverts.ErrInsufficientBalance.With("withdraw: not good, staked %v, want %v", u.Amount, amount)
	}
	reward, err := c.settle(env, p, u, caller)
	if err != nil {
		return err
	}

	u.Amount = new(big.Int).Sub(u.Amount, amount)
	u.RewardDebt = settled(u.Amount, p.AccRewardPerShare)
	p.TotalStaked = new(big.Int).Sub(p.TotalStaked, amount)
	if err := c.setUser(pid, caller, u); err != nil {
		return err
	}
	if err := c.pools.Set(pid, *p); err != nil {
		return err
	}
	if amount.Sign() > 0 {
		prm, err := c.params.Get()
		if err != nil {
			return err
		}
		if _, err := c.locking.Lock(env.WithCaller(c.addr), p.StakeToken, caller, amount, prm.LockingDuration); err != nil {
			return err
		}
		stake := c.tokens.Token(p.StakeToken)
		lockingAddr := c.locking.Address()
		fx.add(func() error { return stake.Transfer(c.addr, lockingAddr, amount) })
	}

	env.Emit(c.addr, "Withdraw", caller, "pid", pid, "amount", amount, "reward", reward)
	logger.Debug("withdraw", "pid", pid, "account", caller, "amount", amount, "reward", reward)
	return fx.run()
}

// EmergencyWithdraw returns the caller's whole stake at once, forfeiting pending reward.
// The pool must be in emergency.
func (c *Chef) EmergencyWithdraw(env *xenv.Environment, pid uint64) (*big.Int, error) {
	p, err := c.GetPool(pid)
	if err != nil {
		return nil, err
	}
	if !p.Emergency {
		return nil, reverts.ErrEmergencyNotEnabled
	}
	caller := env.Caller()
	u, err := c.getUser(pid, caller)
	if err != nil {
		return nil, err
	}
	amount := u.Amount

	p.TotalStaked = new(big.Int).Sub(p.TotalStaked, amount)
	if err := c.setUser(pid, caller, &UserInfo{new(big.Int), new(big.Int)}); err != nil {
		return nil, err
	}
	if err := c.pools.Set(pid, *p); err != nil {
		return nil, err
	}

	env.Emit(c.addr, "EmergencyWithdraw", caller, "pid", pid, "amount", amount)
	logger.Info("emergency withdraw", "pid", pid, "account", caller, "amount", amount)
	if amount.Sign() > 0 {
		if err := c.tokens.Token(p.StakeToken).Transfer(c.addr, caller, amount); err != nil {
			return nil, err
		}
	}
	return amount, nil
}
