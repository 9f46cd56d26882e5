// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pools

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/firofarm/chef/api/utils"
	"github.com/firofarm/chef/builtin/chef"
	"github.com/firofarm/chef/farm"
)

// Pool is the API form of a pool.
type Pool struct {
	ID                uint64                `json:"id"`
	StakeToken        farm.Address          `json:"stakeToken"`
	AllocPoint        uint64                `json:"allocPoint"`
	LastRewardTick    uint64                `json:"lastRewardTick"`
	AccRewardPerShare *math.HexOrDecimal256 `json:"accRewardPerShare"`
	TotalStaked       *math.HexOrDecimal256 `json:"totalStaked"`
	Rewarded          *math.HexOrDecimal256 `json:"rewarded"`
	Emergency         bool                  `json:"emergency"`
}

func convertPool(id uint64, p *chef.Pool) *Pool {
	return &Pool{
		ID:                id,
		StakeToken:        p.StakeToken,
		AllocPoint:        p.AllocPoint,
		LastRewardTick:    p.LastRewardTick,
		AccRewardPerShare: utils.Amount(p.AccRewardPerShare),
		TotalStaked:       utils.Amount(p.TotalStaked),
		Rewarded:          utils.Amount(p.Rewarded),
		Emergency:         p.Emergency,
	}
}

// User is the stake of an account with its pending reward at the current tick.
type User struct {
	Amount     *math.HexOrDecimal256 `json:"amount"`
	RewardDebt *math.HexOrDecimal256 `json:"rewardDebt"`
	Pending    *math.HexOrDecimal256 `json:"pending"`
}

// AddPoolRequest registers a pool.
type AddPoolRequest struct {
	Caller     farm.Address `json:"caller"`
	StakeToken farm.Address `json:"stakeToken"`
	AllocPoint uint64       `json:"allocPoint"`
	WithUpdate bool         `json:"withUpdate"`
}

// AllocRequest reweights a pool.
type AllocRequest struct {
	Caller     farm.Address `json:"caller"`
	AllocPoint uint64       `json:"allocPoint"`
	WithUpdate bool         `json:"withUpdate"`
}

// EmergencyRequest toggles the circuit breaker of a pool.
type EmergencyRequest struct {
	Caller    farm.Address `json:"caller"`
	Emergency bool         `json:"emergency"`
}

// AmountRequest carries a stake amount, decimal or 0x hex.
type AmountRequest struct {
	Caller farm.Address `json:"caller"`
	Amount string       `json:"amount"`
}

// CallerRequest is a call without arguments.
type CallerRequest struct {
	Caller farm.Address `json:"caller"`
}
