// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chef

import (
	"math/big"

	"github.com/firofarm/chef/builtin/reverts"
	"github.com/firofarm/chef/farm"
	"github.com/firofarm/chef/xenv"
)

func (c *Chef) onlyOwner(env *xenv.Environment) error {
	owner, err := c.owner.Get()
	if err != nil {
		return err
	}
	if env.Caller() != owner {
		return reverts.ErrUnauthorized.With("only owner")
	}
	return nil
}

// AddPool registers a pool for stakeToken. withUpdate settles every existing pool first.
func (c *Chef) AddPool(env *xenv.Environment, allocPoint uint64, stakeToken farm.Address, withUpdate bool) (uint64, error) {
	if err := c.onlyOwner(env); err != nil {
		return 0, err
	}
	if _, exists, err := c.PoolOf(stakeToken); err != nil {
		return 0, err
	} else if exists {
		return 0, reverts.ErrDuplicatePool.With("stake token %v already registered", stakeToken)
	}

	var fx effects
	if withUpdate {
		if err := c.massUpdate(env, &fx); err != nil {
			return 0, err
		}
	}
	w, err := c.window.Get()
	if err != nil {
		return 0, err
	}
	prm, err := c.params.Get()
	if err != nil {
		return 0, err
	}
	prm.TotalAllocPoint += allocPoint
	if err := c.params.Set(prm); err != nil {
		return 0, err
	}

	pid, err := c.pools.Push(Pool{
		StakeToken:        stakeToken,
		AllocPoint:        allocPoint,
		LastRewardTick:    max(env.BlockContext().Number, w.Start),
		AccRewardPerShare: new(big.Int),
		TotalStaked:       new(big.Int),
		Rewarded:          new(big.Int),
	})
	if err != nil {
		return 0, err
	}
	if err := c.poolIndex.Set(stakeToken, pid+1); err != nil {
		return 0, err
	}

	env.Emit(c.addr, "PoolAdded", farm.Address{}, "pid", pid, "stakeToken", stakeToken, "allocPoint", allocPoint)
	logger.Info("pool added", "pid", pid, "stakeToken", stakeToken, "allocPoint", allocPoint)
	return pid, fx.run()
}

// SetAllocPoint reweights pool pid. withUpdate settles every pool first.
func (c *Chef) SetAllocPoint(env *xenv.Environment, pid uint64, allocPoint uint64, withUpdate bool) error {
	if err := c.onlyOwner(env); err != nil {
		return err
	}
	var fx effects
	if withUpdate {
		if err := c.massUpdate(env, &fx); err != nil {
			return err
		}
	}
	p, err := c.GetPool(pid)
	if err != nil {
		return err
	}
	prm, err := c.params.Get()
	if err != nil {
		return err
	}
	prm.TotalAllocPoint = prm.TotalAllocPoint - p.AllocPoint + allocPoint
	if err := c.params.Set(prm); err != nil {
		return err
	}
	old := p.AllocPoint
	p.AllocPoint = allocPoint
	if err := c.pools.Set(pid, *p); err != nil {
		return err
	}

	env.Emit(c.addr, "AllocPointSet", farm.Address{}, "pid", pid, "from", old, "to", allocPoint)
	return fx.run()
}

// setWindow settles all pools under the old window, then applies w.
// Pools not yet started are moved to the new start, past accrual is left alone.
func (c *Chef) setWindow(env *xenv.Environment, w Window) error {
	if w.Start >= w.End {
		return reverts.ErrInvalidWindow.With("start %v must be before end %v", w.Start, w.End)
	}
	var fx effects
	if err := c.massUpdate(env, &fx); err != nil {
		return err
	}
	if err := c.window.Set(w); err != nil {
		return err
	}

	now := env.BlockContext().Number
	n, err := c.pools.Len()
	if err != nil {
		return err
	}
	for pid := range n {
		p, err := c.GetPool(pid)
		if err != nil {
			return err
		}
		if p.LastRewardTick > now {
			p.LastRewardTick = max(now, w.Start)
			if err := c.pools.Set(pid, *p); err != nil {
				return err
			}
		}
	}

	env.Emit(c.addr, "WindowChanged", farm.Address{}, "start", w.Start, "end", w.End)
	logger.Info("reward window changed", "start", w.Start, "end", w.End)
	return fx.run()
}

// SetStartTick moves the start of the reward window.
func (c *Chef) SetStartTick(env *xenv.Environment, tick uint64) error {
	if err := c.onlyOwner(env); err != nil {
		return err
	}
	w, err := c.window.Get()
	if err != nil {
		return err
	}
	w.Start = tick
	return c.setWindow(env, w)
}

// SetEndTick moves the end of the reward window. An end in the past stops accrual from now on.
func (c *Chef) SetEndTick(env *xenv.Environment, tick uint64) error {
	if err := c.onlyOwner(env); err != nil {
		return err
	}
	w, err := c.window.Get()
	if err != nil {
		return err
	}
	w.End = tick
	return c.setWindow(env, w)
}

// SetEmergency toggles the circuit breaker of pool pid.
func (c *Chef) SetEmergency(env *xenv.Environment, pid uint64, emergency bool) error {
	if err := c.onlyOwner(env); err != nil {
		return err
	}
	p, err := c.GetPool(pid)
	if err != nil {
		return err
	}
	p.Emergency = emergency
	if err := c.pools.Set(pid, *p); err != nil {
		return err
	}
	env.Emit(c.addr, "EmergencySet", farm.Address{}, "pid", pid, "emergency", emergency)
	logger.Warn("emergency toggled", "pid", pid, "emergency", emergency)
	return nil
}

// SetRewardPerTick changes the global reward rate. Pools are settled at the old rate first.
func (c *Chef) SetRewardPerTick(env *xenv.Environment, perTick *big.Int) error {
	if err := c.onlyOwner(env); err != nil {
		return err
	}
	if perTick.Sign() < 0 {
		return reverts.ErrInvalidAmount
	}
	var fx effects
	if err := c.massUpdate(env, &fx); err != nil {
		return err
	}
	c.rewardPerTick.Set(perTick)
	env.Emit(c.addr, "RewardPerTickSet", farm.Address{}, "rewardPerTick", perTick)
	return fx.run()
}

// SetDevCut changes the developer cut. Pools are settled at the old cut first.
func (c *Chef) SetDevCut(env *xenv.Environment, numerator, denominator uint64) error {
	if err := c.onlyOwner(env); err != nil {
		return err
	}
	if denominator != 0 && numerator > denominator {
		return reverts.ErrInvalidAmount.With("dev cut above 100%%")
	}
	var fx effects
	if err := c.massUpdate(env, &fx); err != nil {
		return err
	}
	prm, err := c.params.Get()
	if err != nil {
		return err
	}
	prm.DevCutNumerator, prm.DevCutDenominator = numerator, denominator
	if err := c.params.Set(prm); err != nil {
		return err
	}
	env.Emit(c.addr, "DevCutSet", farm.Address{}, "numerator", numerator, "denominator", denominator)
	return fx.run()
}

// SetDevAddr changes the developer account. The current developer or the owner may call it.
func (c *Chef) SetDevAddr(env *xenv.Environment, devAddr farm.Address) error {
	current, err := c.devAddr.Get()
	if err != nil {
		return err
	}
	if env.Caller() != current {
		if err := c.onlyOwner(env); err != nil {
			return reverts.ErrUnauthorized.With("dev: wut?")
		}
	}
	c.devAddr.Set(devAddr)
	env.Emit(c.addr, "DevAddrSet", devAddr)
	return nil
}

// TransferOwnership hands the admin surface over to newOwner.
func (c *Chef) TransferOwnership(env *xenv.Environment, newOwner farm.Address) error {
	if err := c.onlyOwner(env); err != nil {
		return err
	}
	if newOwner.IsZero() {
		return reverts.ErrInvalidAmount.With("new owner is the zero address")
	}
	c.owner.Set(newOwner)
	env.Emit(c.addr, "OwnershipTransferred", newOwner, "previous", env.Caller())
	return nil
}
