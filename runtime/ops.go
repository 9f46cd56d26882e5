// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"math/big"

	"github.com/firofarm/chef/builtin/chef"
	"github.com/firofarm/chef/builtin/locking"
	"github.com/firofarm/chef/builtin/reverts"
	"github.com/firofarm/chef/builtin/vesting"
	"github.com/firofarm/chef/farm"
	"github.com/firofarm/chef/xenv"
)

// AddPool registers a pool for stakeToken.
func (rt *Runtime) AddPool(caller farm.Address, allocPoint uint64, stakeToken farm.Address, withUpdate bool) (pid uint64, err error) {
	_, err = rt.Execute(caller, "addPool", func(env *xenv.Environment, c *Contracts) error {
		pid, err = c.Chef.AddPool(env, allocPoint, stakeToken, withUpdate)
		return err
	})
	return
}

func (rt *Runtime) SetAllocPoint(caller farm.Address, pid, allocPoint uint64, withUpdate bool) (*Receipt, error) {
	return rt.Execute(caller, "setAllocPoint", func(env *xenv.Environment, c *Contracts) error {
		return c.Chef.SetAllocPoint(env, pid, allocPoint, withUpdate)
	})
}

func (rt *Runtime) SetStartTick(caller farm.Address, tick uint64) (*Receipt, error) {
	return rt.Execute(caller, "setStartTick", func(env *xenv.Environment, c *Contracts) error {
		return c.Chef.SetStartTick(env, tick)
	})
}

func (rt *Runtime) SetEndTick(caller farm.Address, tick uint64) (*Receipt, error) {
	return rt.Execute(caller, "setEndTick", func(env *xenv.Environment, c *Contracts) error {
		return c.Chef.SetEndTick(env, tick)
	})
}

func (rt *Runtime) SetEmergency(caller farm.Address, pid uint64, emergency bool) (*Receipt, error) {
	return rt.Execute(caller, "setEmergency", func(env *xenv.Environment, c *Contracts) error {
		return c.Chef.SetEmergency(env, pid, emergency)
	})
}

func (rt *Runtime) SetRewardPerTick(caller farm.Address, perTick *big.Int) (*Receipt, error) {
	return rt.Execute(caller, "setRewardPerTick", func(env *xenv.Environment, c *Contracts) error {
		return c.Chef.SetRewardPerTick(env, perTick)
	})
}

func (rt *Runtime) SetDevCut(caller farm.Address, numerator, denominator uint64) (*Receipt, error) {
	return rt.Execute(caller, "setDevCut", func(env *xenv.Environment, c *Contracts) error {
		return c.Chef.SetDevCut(env, numerator, denominator)
	})
}

func (rt *Runtime) SetDevAddr(caller, devAddr farm.Address) (*Receipt, error) {
	return rt.Execute(caller, "setDevAddr", func(env *xenv.Environment, c *Contracts) error {
		return c.Chef.SetDevAddr(env, devAddr)
	})
}

func (rt *Runtime) TransferOwnership(caller, newOwner farm.Address) (*Receipt, error) {
	return rt.Execute(caller, "transferOwnership", func(env *xenv.Environment, c *Contracts) error {
		return c.Chef.TransferOwnership(env, newOwner)
	})
}

func (rt *Runtime) UpdatePool(caller farm.Address, pid uint64) (*Receipt, error) {
	return rt.Execute(caller, "updatePool", func(env *xenv.Environment, c *Contracts) error {
		return c.Chef.UpdatePool(env, pid)
	})
}

func (rt *Runtime) MassUpdatePools(caller farm.Address) (*Receipt, error) {
	return rt.Execute(caller, "massUpdatePools", func(env *xenv.Environment, c *Contracts) error {
		return c.Chef.MassUpdatePools(env)
	})
}

// Deposit stakes amount into pool pid. The caller must have approved the chef.
func (rt *Runtime) Deposit(caller farm.Address, pid uint64, amount *big.Int) (*Receipt, error) {
	return rt.Execute(caller, "deposit", func(env *xenv.Environment, c *Contracts) error {
		return c.Chef.Deposit(env, pid, amount)
	})
}

// Withdraw unstakes amount from pool pid into a lock entry.
func (rt *Runtime) Withdraw(caller farm.Address, pid uint64, amount *big.Int) (*Receipt, error) {
	return rt.Execute(caller, "withdraw", func(env *xenv.Environment, c *Contracts) error {
		return c.Chef.Withdraw(env, pid, amount)
	})
}

// EmergencyWithdraw returns the caller's whole stake of pool pid, forfeiting reward.
func (rt *Runtime) EmergencyWithdraw(caller farm.Address, pid uint64) (amount *big.Int, err error) {
	_, err = rt.Execute(caller, "emergencyWithdraw", func(env *xenv.Environment, c *Contracts) error {
		amount, err = c.Chef.EmergencyWithdraw(env, pid)
		return err
	})
	return
}

// UnlockVesting releases what has vested for beneficiary.
func (rt *Runtime) UnlockVesting(caller, beneficiary farm.Address) (amount *big.Int, err error) {
	_, err = rt.Execute(caller, "unlockVesting", func(env *xenv.Environment, c *Contracts) error {
		amount, err = c.Vesting.UnlockVesting(env, beneficiary)
		return err
	})
	return
}

func (rt *Runtime) WithdrawERC20(caller, to, tok farm.Address, amount *big.Int) (*Receipt, error) {
	return rt.Execute(caller, "withdrawERC20", func(env *xenv.Environment, c *Contracts) error {
		return c.Vesting.WithdrawERC20(env, to, tok, amount)
	})
}

// Unlock claims lock entry index of beneficiary.
func (rt *Runtime) Unlock(caller, beneficiary farm.Address, index uint64) (entry *locking.Entry, err error) {
	_, err = rt.Execute(caller, "unlock", func(env *xenv.Environment, c *Contracts) error {
		entry, err = c.Locking.Unlock(env, beneficiary, index)
		return err
	})
	return
}

func (rt *Runtime) Transfer(caller, tok, to farm.Address, amount *big.Int) (*Receipt, error) {
	return rt.Execute(caller, "transfer", func(env *xenv.Environment, c *Contracts) error {
		if err := c.Tokens.Transfer(tok, caller, to, amount); err != nil {
			return err
		}
		env.Emit(c.Tokens.Address(), "Transfer", caller, "token", tok, "to", to, "amount", amount)
		return nil
	})
}

func (rt *Runtime) Approve(caller, tok, spender farm.Address, amount *big.Int) (*Receipt, error) {
	return rt.Execute(caller, "approve", func(env *xenv.Environment, c *Contracts) error {
		if err := c.Tokens.Approve(tok, caller, spender, amount); err != nil {
			return err
		}
		env.Emit(c.Tokens.Address(), "Approval", caller, "token", tok, "spender", spender, "amount", amount)
		return nil
	})
}

// Mint creates amount of tok for to. Only allowed when the faucet is enabled.
func (rt *Runtime) Mint(caller, tok, to farm.Address, amount *big.Int) (*Receipt, error) {
	return rt.Execute(caller, "mint", func(env *xenv.Environment, c *Contracts) error {
		if !rt.faucet {
			return reverts.ErrUnauthorized.With("faucet disabled")
		}
		if err := c.Tokens.Mint(tok, to, amount); err != nil {
			return err
		}
		env.Emit(c.Tokens.Address(), "Mint", to, "token", tok, "amount", amount)
		return nil
	})
}

// PendingFiro projects the reward account would settle in pool pid now.
func (rt *Runtime) PendingFiro(pid uint64, account farm.Address) (pending *big.Int, err error) {
	err = rt.Call(func(blockCtx *xenv.BlockContext, c *Contracts) error {
		pending, err = c.Chef.PendingFiro(pid, account, blockCtx.Number)
		return err
	})
	return
}

func (rt *Runtime) GetUserInfo(pid uint64, account farm.Address) (u *chef.UserInfo, err error) {
	err = rt.Call(func(_ *xenv.BlockContext, c *Contracts) error {
		u, err = c.Chef.GetUserInfo(pid, account)
		return err
	})
	return
}

func (rt *Runtime) GetPool(pid uint64) (p *chef.Pool, err error) {
	err = rt.Call(func(_ *xenv.BlockContext, c *Contracts) error {
		p, err = c.Chef.GetPool(pid)
		return err
	})
	return
}

// Pools returns every pool in index order.
func (rt *Runtime) Pools() (pools []*chef.Pool, err error) {
	err = rt.Call(func(_ *xenv.BlockContext, c *Contracts) error {
		n, err := c.Chef.PoolLength()
		if err != nil {
			return err
		}
		for pid := range n {
			p, err := c.Chef.GetPool(pid)
			if err != nil {
				return err
			}
			pools = append(pools, p)
		}
		return nil
	})
	return
}

func (rt *Runtime) Window() (w chef.Window, err error) {
	err = rt.Call(func(_ *xenv.BlockContext, c *Contracts) error {
		w, err = c.Chef.Window()
		return err
	})
	return
}

// Settings is the admin state of the chef.
type Settings struct {
	Owner           farm.Address
	DevAddr         farm.Address
	RewardToken     farm.Address
	RewardPerTick   *big.Int
	Window          chef.Window
	TotalAllocPoint uint64
	DevCutNum       uint64
	DevCutDen       uint64
	LockingDuration uint64
	PoolLength      uint64
}

func (rt *Runtime) Settings() (s *Settings, err error) {
	err = rt.Call(func(_ *xenv.BlockContext, c *Contracts) error {
		s = &Settings{}
		if s.Owner, err = c.Chef.Owner(); err != nil {
			return err
		}
		if s.DevAddr, err = c.Chef.DevAddr(); err != nil {
			return err
		}
		if s.RewardToken, err = c.Chef.RewardToken(); err != nil {
			return err
		}
		if s.RewardPerTick, err = c.Chef.RewardPerTick(); err != nil {
			return err
		}
		if s.Window, err = c.Chef.Window(); err != nil {
			return err
		}
		if s.TotalAllocPoint, err = c.Chef.TotalAllocPoint(); err != nil {
			return err
		}
		if s.DevCutNum, s.DevCutDen, err = c.Chef.DevCut(); err != nil {
			return err
		}
		if s.LockingDuration, err = c.Chef.LockingDuration(); err != nil {
			return err
		}
		s.PoolLength, err = c.Chef.PoolLength()
		return err
	})
	return
}

func (rt *Runtime) GetLockInfo(beneficiary farm.Address) (info *locking.Info, err error) {
	err = rt.Call(func(_ *xenv.BlockContext, c *Contracts) error {
		info, err = c.Locking.GetLockInfo(beneficiary)
		return err
	})
	return
}

// VestingStatus is a schedule together with what is releasable now.
type VestingStatus struct {
	Schedule   vesting.Schedule
	Releasable *big.Int
}

func (rt *Runtime) GetVesting(beneficiary farm.Address) (status *VestingStatus, err error) {
	err = rt.Call(func(blockCtx *xenv.BlockContext, c *Contracts) error {
		s, err := c.Vesting.GetSchedule(beneficiary)
		if err != nil {
			return err
		}
		status = &VestingStatus{s, s.Releasable(blockCtx.Time)}
		return nil
	})
	return
}

func (rt *Runtime) BalanceOf(tok, account farm.Address) (balance *big.Int, err error) {
	err = rt.Call(func(_ *xenv.BlockContext, c *Contracts) error {
		balance, err = c.Tokens.BalanceOf(tok, account)
		return err
	})
	return
}

func (rt *Runtime) Allowance(tok, owner, spender farm.Address) (amount *big.Int, err error) {
	err = rt.Call(func(_ *xenv.BlockContext, c *Contracts) error {
		amount, err = c.Tokens.Allowance(tok, owner, spender)
		return err
	})
	return
}

func (rt *Runtime) TotalSupply(tok farm.Address) (supply *big.Int, err error) {
	err = rt.Call(func(_ *xenv.BlockContext, c *Contracts) error {
		supply, err = c.Tokens.TotalSupply(tok)
		return err
	})
	return
}
