// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vesting

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/firofarm/chef/api/utils"
	"github.com/firofarm/chef/farm"
	"github.com/firofarm/chef/runtime"
)

// Schedule is the vesting state of a beneficiary at the current time.
type Schedule struct {
	TotalGranted  *math.HexOrDecimal256 `json:"totalGranted"`
	TotalReleased *math.HexOrDecimal256 `json:"totalReleased"`
	Start         uint64                `json:"start"`
	Cliff         uint64                `json:"cliff"`
	Duration      uint64                `json:"duration"`
	LastVestAt    uint64                `json:"lastVestAt"`
	Releasable    *math.HexOrDecimal256 `json:"releasable"`
}

func convertSchedule(s *runtime.VestingStatus) *Schedule {
	return &Schedule{
		TotalGranted:  utils.Amount(s.Schedule.TotalGranted),
		TotalReleased: utils.Amount(s.Schedule.TotalReleased),
		Start:         s.Schedule.Start,
		Cliff:         s.Schedule.Cliff,
		Duration:      s.Schedule.Duration,
		LastVestAt:    s.Schedule.LastVestAt,
		Releasable:    utils.Amount(s.Releasable),
	}
}

type UnlockRequest struct {
	Caller farm.Address `json:"caller"`
}

type WithdrawRequest struct {
	Caller farm.Address `json:"caller"`
	To     farm.Address `json:"to"`
	Token  farm.Address `json:"token"`
	Amount string       `json:"amount"`
}
