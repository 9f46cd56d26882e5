// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// ParseAmount parses a non-negative 256 bit amount, in decimal or 0x prefixed hex.
func ParseAmount(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty amount")
	}
	var (
		v   *uint256.Int
		err error
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err = uint256.FromHex(s)
	} else {
		v, err = uint256.FromDecimal(s)
	}
	if err != nil {
		return nil, BadRequest(errors.WithMessagef(err, "amount %q", s))
	}
	return v.ToBig(), nil
}

// Amount renders v the way amounts are answered.
func Amount(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		v = new(big.Int)
	}
	return (*math.HexOrDecimal256)(v)
}
