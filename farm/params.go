// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import "math/big"

// AccRewardScale is the fixed-point multiplier of accRewardPerShare.
var AccRewardScale = big.NewInt(1e12)

// Default durations, in schedule clock units (seconds on a wall clock).
const (
	DefaultVestingDuration uint64 = 86400
	DefaultLockingDuration uint64 = 86400
)

// Big0 is a shared zero. Never mutate it.
var Big0 = new(big.Int)

// BigOf returns a copy of v, or zero when v is nil.
func BigOf(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}
