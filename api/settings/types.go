// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package settings

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/firofarm/chef/api/utils"
	"github.com/firofarm/chef/farm"
	"github.com/firofarm/chef/runtime"
)

type DevCut struct {
	Numerator   uint64 `json:"numerator"`
	Denominator uint64 `json:"denominator"`
}

// Status is the admin state together with the current ticks.
type Status struct {
	Owner           farm.Address          `json:"owner"`
	DevAddr         farm.Address          `json:"devAddr"`
	RewardToken     farm.Address          `json:"rewardToken"`
	RewardPerTick   *math.HexOrDecimal256 `json:"rewardPerTick"`
	StartTick       uint64                `json:"startTick"`
	EndTick         uint64                `json:"endTick"`
	TotalAllocPoint uint64                `json:"totalAllocPoint"`
	DevCut          DevCut                `json:"devCut"`
	LockingDuration uint64                `json:"lockingDuration"`
	PoolLength      uint64                `json:"poolLength"`
	Number          uint64                `json:"number"`
	Time            uint64                `json:"time"`
}

func convertStatus(s *runtime.Settings, number, time uint64) *Status {
	return &Status{
		Owner:           s.Owner,
		DevAddr:         s.DevAddr,
		RewardToken:     s.RewardToken,
		RewardPerTick:   utils.Amount(s.RewardPerTick),
		StartTick:       s.Window.Start,
		EndTick:         s.Window.End,
		TotalAllocPoint: s.TotalAllocPoint,
		DevCut:          DevCut{s.DevCutNum, s.DevCutDen},
		LockingDuration: s.LockingDuration,
		PoolLength:      s.PoolLength,
		Number:          number,
		Time:            time,
	}
}

type TickRequest struct {
	Caller farm.Address `json:"caller"`
	Tick   uint64       `json:"tick"`
}

type RewardPerTickRequest struct {
	Caller farm.Address `json:"caller"`
	Amount string       `json:"amount"`
}

type DevCutRequest struct {
	Caller farm.Address `json:"caller"`
	DevCut
}

type AddressRequest struct {
	Caller  farm.Address `json:"caller"`
	Address farm.Address `json:"address"`
}
