// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package locking

import (
	"math/big"

	"github.com/firofarm/chef/farm"
)

// Entry is one locked principal, claimable once after UnlockableAt.
type Entry struct {
	Token        farm.Address
	Amount       *big.Int
	GrantedAt    uint64
	UnlockableAt uint64
	Withdrawn    bool
}

// Unlockable reports whether the entry can be claimed at now.
func (e *Entry) Unlockable(now uint64) bool {
	return !e.Withdrawn && now >= e.UnlockableAt
}

// Info lists all entries of a beneficiary as parallel slices in grant order.
type Info struct {
	Withdrawns    []bool
	Tokens        []farm.Address
	UnlockableAts []uint64
	Amounts       []*big.Int
}
