// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vesting

import (
	"math/big"
)

// Schedule is the single linear release schedule of a beneficiary.
//
// Start and Cliff are fixed by the first grant. Later grants only add to
// TotalGranted, which vests over Duration counted from that same Start.
type Schedule struct {
	TotalGranted  *big.Int
	TotalReleased *big.Int
	Start         uint64
	Cliff         uint64
	LastVestAt    uint64
	Duration      uint64
}

func (s *Schedule) normalize() {
	if s.TotalGranted == nil {
		s.TotalGranted = new(big.Int)
	}
	if s.TotalReleased == nil {
		s.TotalReleased = new(big.Int)
	}
}

// IsEmpty returns whether nothing was ever granted.
func (s *Schedule) IsEmpty() bool {
	return s.TotalGranted == nil || s.TotalGranted.Sign() == 0
}

// Vested returns the cumulative vested amount at now.
func (s *Schedule) Vested(now uint64) *big.Int {
	s.normalize()
	if now < s.Start || now < s.Cliff {
		return new(big.Int)
	}
	elapsed := now - s.Start
	if s.Duration == 0 || elapsed >= s.Duration {
		return new(big.Int).Set(s.TotalGranted)
	}
	// TotalGranted * elapsed / Duration
	v := new(big.Int).Mul(s.TotalGranted, new(big.Int).SetUint64(elapsed))
	return v.Quo(v, new(big.Int).SetUint64(s.Duration))
}

// Releasable returns vested but not yet released amount at now.
func (s *Schedule) Releasable(now uint64) *big.Int {
	v := s.Vested(now)
	v.Sub(v, s.TotalReleased)
	if v.Sign() < 0 {
		return new(big.Int)
	}
	return v
}
