// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vesting

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScheduleVested(t *testing.T) {
	s := Schedule{TotalGranted: big.NewInt(3000), Start: 100, Cliff: 100, Duration: 1000}

	assert.Equal(t, int64(0), s.Vested(50).Int64())
	assert.Equal(t, int64(0), s.Vested(100).Int64())
	assert.Equal(t, int64(1500), s.Vested(600).Int64())
	assert.Equal(t, int64(3000), s.Vested(1100).Int64())
	assert.Equal(t, int64(3000), s.Vested(99999).Int64())

	// floor division
	s.TotalGranted = big.NewInt(10)
	assert.Equal(t, int64(3), s.Vested(433).Int64())
}

func TestScheduleZeroDuration(t *testing.T) {
	s := Schedule{TotalGranted: big.NewInt(5), Start: 10}
	assert.Equal(t, int64(5), s.Vested(10).Int64())
	assert.Equal(t, int64(0), s.Vested(9).Int64())
}

func TestScheduleEmpty(t *testing.T) {
	var s Schedule
	assert.True(t, s.IsEmpty())
	assert.Equal(t, 0, s.Releasable(100).Sign())
}
