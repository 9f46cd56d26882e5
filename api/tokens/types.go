// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tokens

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/firofarm/chef/farm"
)

type Token struct {
	Address     farm.Address          `json:"address"`
	TotalSupply *math.HexOrDecimal256 `json:"totalSupply"`
}

type Balance struct {
	Balance *math.HexOrDecimal256 `json:"balance"`
}

type Allowance struct {
	Allowance *math.HexOrDecimal256 `json:"allowance"`
}

// TransferRequest moves, approves or mints Amount. To is the spender when approving.
type TransferRequest struct {
	Caller farm.Address `json:"caller"`
	To     farm.Address `json:"to"`
	Amount string       `json:"amount"`
}
