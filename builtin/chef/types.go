// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chef

import (
	"math/big"

	"github.com/firofarm/chef/farm"
)

// Pool is a stake token bucket earning a share of the global reward rate.
type Pool struct {
	StakeToken        farm.Address
	AllocPoint        uint64
	LastRewardTick    uint64
	AccRewardPerShare *big.Int // scaled by farm.AccRewardScale
	TotalStaked       *big.Int
	Rewarded          *big.Int // cumulative reward credited to stakers
	Emergency         bool
}

func (p *Pool) normalize() {
	if p.AccRewardPerShare == nil {
		p.AccRewardPerShare = new(big.Int)
	}
	if p.TotalStaked == nil {
		p.TotalStaked = new(big.Int)
	}
	if p.Rewarded == nil {
		p.Rewarded = new(big.Int)
	}
}

// UserInfo is the stake of an account in a pool.
type UserInfo struct {
	Amount     *big.Int
	RewardDebt *big.Int
}

func (u *UserInfo) normalize() {
	if u.Amount == nil {
		u.Amount = new(big.Int)
	}
	if u.RewardDebt == nil {
		u.RewardDebt = new(big.Int)
	}
}

// Config initializes the chef.
type Config struct {
	DevAddr            farm.Address
	RewardToken        farm.Address
	RewardPerTick      *big.Int
	StartTick          uint64
	EndTick            uint64
	LockingDuration    uint64
	VestingStartOffset uint64
	VestingCliffOffset uint64
	DevCutNumerator    uint64
	DevCutDenominator  uint64
}

// Window is the active reward range [Start, End).
type Window struct {
	Start uint64
	End   uint64
}

// params are the settings kept in a single slot.
type params struct {
	LockingDuration    uint64
	VestingStartOffset uint64
	VestingCliffOffset uint64
	DevCutNumerator    uint64
	DevCutDenominator  uint64
	TotalAllocPoint    uint64
}

// overlap returns the number of ticks of [from, to) within [start, end).
func overlap(from, to, start, end uint64) uint64 {
	lo := max(from, start)
	hi := min(to, end)
	if hi <= lo {
		return 0
	}
	return hi - lo
}

// accruedPerShare returns how much the accumulator grows for reward over staked.
func accruedPerShare(reward, staked *big.Int) *big.Int {
	v := new(big.Int).Mul(reward, farm.AccRewardScale)
	return v.Quo(v, staked)
}

// settled returns amount * acc / scale.
func settled(amount, acc *big.Int) *big.Int {
	v := new(big.Int).Mul(amount, acc)
	return v.Quo(v, farm.AccRewardScale)
}

// pendingOf returns amount * acc / scale - debt, never negative.
func pendingOf(u *UserInfo, acc *big.Int) *big.Int {
	v := settled(u.Amount, acc)
	v.Sub(v, u.RewardDebt)
	if v.Sign() < 0 {
		return new(big.Int)
	}
	return v
}
