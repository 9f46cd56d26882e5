// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package vesting implements the linear vesting contract which receives farm rewards.
package vesting

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

var logger = log.WithContext("pkg", "vesting")

var (
	slotOwner       = farm.BytesToBytes32([]byte("owner"))
	slotVester      = farm.BytesToBytes32([]byte("vester"))
	slotRewardToken = farm.BytesToBytes32([]byte("reward-token"))
	slotDuration    = farm.BytesToBytes32([]byte("duration"))
	slotSchedules   = farm.BytesToBytes32([]byte("schedules"))
)

// Vesting holds reward token on behalf of beneficiaries and releases it linearly.
type Vesting struct {
	addr        farm.Address
	owner       *solidity.Address
	vester      *solidity.Address
	rewardToken *solidity.Address
	duration    *solidity.Raw[uint64]
	schedules   *solidity.Mapping[farm.Address, Schedule]
	tokens      token.Resolver
}

func New(addr farm.Address, state *state.State, tokens token.Resolver) *Vesting {
	ctx := solidity.NewContext(addr, state)
	return &Vesting{
		addr:        addr,
		owner:       solidity.NewAddress(ctx, slotOwner),
		vester:      solidity.NewAddress(ctx, slotVester),
		rewardToken: solidity.NewAddress(ctx, slotRewardToken),
		duration:    solidity.NewRaw[uint64](ctx, slotDuration),
		schedules:   solidity.NewMapping[farm.Address, Schedule](ctx, slotSchedules),
		tokens:      tokens,
	}
}

func (v *Vesting) Address() farm.Address { return v.addr }

// Initialize sets up the contract once. The caller becomes the owner.
func (v *Vesting) Initialize(env *xenv.Environment, rewardToken, vester farm.Address, duration uint64) error {
	owner, err := v.owner.Get()
	if err != nil {
		return err
	}
	if !owner.IsZero() {
		return reverts.ErrAlreadyInitialized
	}
	v.owner.Set(env.Caller())
	v.vester.Set(vester)
	v.rewardToken.Set(rewardToken)
	return v.duration.Set(duration)
}

func (v *Vesting) Owner() (farm.Address, error)       { return v.owner.Get() }
func (v *Vesting) Vester() (farm.Address, error)      { return v.vester.Get() }
func (v *Vesting) RewardToken() (farm.Address, error) { return v.rewardToken.Get() }
func (v *Vesting) Duration() (uint64, error)          { return v.duration.Get() }

// GetSchedule returns the schedule of beneficiary, zero valued when none.
func (v *Vesting) GetSchedule(beneficiary farm.Address) (Schedule, error) {
	s, err := v.schedules.Get(beneficiary)
	if err != nil {
		return Schedule{}, err
	}
	s.normalize()
	return s, nil
}

// Releasable returns the amount unlockVesting would pay at now.
func (v *Vesting) Releasable(beneficiary farm.Address, now uint64) (*big.Int, error) {
	s, err := v.GetSchedule(beneficiary)
	if err != nil {
		return nil, err
	}
	return s.Releasable(now), nil
}

// Grant adds amount to the schedule of beneficiary. The first grant fixes the
// schedule start and cliff. Only the vester may grant.
func (v *Vesting) Grant(env *xenv.Environment, beneficiary farm.Address, amount *big.Int, startOffset, cliffOffset uint64) error {
	vester, err := v.vester.Get()
	if err != nil {
		return err
	}
	if env.Caller() != vester {
		return reverts.ErrUnauthorized.With("only vester can add vesting")
	}
	if amount.Sign() < 0 {
		return reverts.ErrInvalidAmount
	}
	if amount.Sign() == 0 {
		return nil
	}

	now := env.BlockContext().Time
	s, err := v.GetSchedule(beneficiary)
	if err != nil {
		return err
	}
	if s.IsEmpty() {
		duration, err := v.duration.Get()
		if err != nil {
			return err
		}
		s.Duration = duration
		s.Start = now + startOffset
		s.Cliff = now + cliffOffset
	}
	s.TotalGranted = new(big.Int).Add(s.TotalGranted, amount)
	if err := v.schedules.Set(beneficiary, s); err != nil {
		return err
	}

	env.Emit(v.addr, "Vested", beneficiary, "amount", amount, "totalGranted", s.TotalGranted, "start", s.Start)
	logger.Debug("granted", "beneficiary", beneficiary, "amount", amount, "total", s.TotalGranted)
	return nil
}

// UnlockVesting pays out everything vested and not yet released to beneficiary.
// Nothing to release is not an error.
func (v *Vesting) UnlockVesting(env *xenv.Environment, beneficiary farm.Address) (*big.Int, error) {
	now := env.BlockContext().Time
	s, err := v.GetSchedule(beneficiary)
	if err != nil {
		return nil, err
	}
	releasable := s.Releasable(now)
	if releasable.Sign() == 0 {
		return releasable, nil
	}

	s.TotalReleased = new(big.Int).Add(s.TotalReleased, releasable)
	s.LastVestAt = now
	if err := v.schedules.Set(beneficiary, s); err != nil {
		return nil, err
	}

	rewardToken, err := v.rewardToken.Get()
	if err != nil {
		return nil, err
	}
	env.Emit(v.addr, "VestingReleased", beneficiary, "amount", releasable, "totalReleased", s.TotalReleased)
	// external transfer goes last
	if err := v.tokens.Token(rewardToken).Transfer(v.addr, beneficiary, releasable); err != nil {
		return nil, err
	}
	return releasable, nil
}

// WithdrawERC20 sweeps amount of any token held by the contract. Owner only.
func (v *Vesting) WithdrawERC20(env *xenv.Environment, to, tok farm.Address, amount *big.Int) error {
	owner, err := v.owner.Get()
	if err != nil {
		return err
	}
	if env.Caller() != owner {
		return reverts.ErrUnauthorized.With("only owner can withdraw")
	}
	env.Emit(v.addr, "Withdrawn", to, "token", tok, "amount", amount)
	return v.tokens.Token(tok).Transfer(v.addr, to, amount)
}
