// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package locks

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/firofarm/chef/api/utils"
	"github.com/firofarm/chef/builtin/locking"
	"github.com/firofarm/chef/farm"
)

// Entry is a lock entry with its index and whether it can be claimed now.
type Entry struct {
	Index        uint64                `json:"index"`
	Token        farm.Address          `json:"token"`
	Amount       *math.HexOrDecimal256 `json:"amount"`
	UnlockableAt uint64                `json:"unlockableAt"`
	Withdrawn    bool                  `json:"withdrawn"`
	Unlockable   bool                  `json:"unlockable"`
}

func convertInfo(info *locking.Info, now uint64) []*Entry {
	entries := make([]*Entry, 0, len(info.Amounts))
	for i := range info.Amounts {
		e := &Entry{
			Index:        uint64(i),
			Token:        info.Tokens[i],
			Amount:       utils.Amount(info.Amounts[i]),
			UnlockableAt: info.UnlockableAts[i],
			Withdrawn:    info.Withdrawns[i],
		}
		e.Unlockable = !e.Withdrawn && now >= e.UnlockableAt
		entries = append(entries, e)
	}
	return entries
}

type UnlockRequest struct {
	Caller farm.Address `json:"caller"`
}
