// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"math/big"
	"sync/atomic"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/firofarm/chef/farm"
)

// DevAccount account for development.
type DevAccount struct {
	Address    farm.Address
	PrivateKey *ecdsa.PrivateKey
}

var devAccounts atomic.Value

// DevAccounts returns pre-alloced accounts for the devnet.
func DevAccounts() []DevAccount {
	if accs := devAccounts.Load(); accs != nil {
		return accs.([]DevAccount)
	}

	var accs []DevAccount
	privKeys := []string{
		"dce1443bd2ef0c2631adc1c67e5c93f13dc23a41c18b536effbbdcbcdb96fb65",
		"321d6443bc6177273b5abf54210fe806d451d6b7973bccc2384ef78bbcd0bf51",
		"2d7c882bad2a01105e36dda3646693bc1aaaa45b0ed63fb0ce23c060294f3af2",
		"593537225b037191d322c3b1df585fb1e5100811b71a6f7fc7e29cca1333483e",
		"ca7b25fc980c759df5f3ce17a3d881d6e19a38e651fc4315fc08917edab41058",
	}
	for _, str := range privKeys {
		b, err := hex.DecodeString(str)
		if err != nil {
			panic(err)
		}
		pk := secp256k1.PrivKeyFromBytes(b).ToECDSA()
		addr := crypto.PubkeyToAddress(pk.PublicKey)
		accs = append(accs, DevAccount{farm.Address(addr), pk})
	}
	devAccounts.Store(accs)
	return accs
}

// Devnet stake tokens.
var (
	DevLP1 = farm.BytesToAddress([]byte("FIRO-ETH-LP"))
	DevLP2 = farm.BytesToAddress([]byte("FIRO-USDT-LP"))
)

func units(v int64, decimals int64) *math.HexOrDecimal256 {
	x := new(big.Int).Exp(big.NewInt(10), big.NewInt(decimals), nil)
	x.Mul(x, big.NewInt(v))
	return (*math.HexOrDecimal256)(x)
}

// DevConfig returns the devnet genesis. The first dev account owns the farm,
// the second receives the dev cut and every account holds both LP tokens.
func DevConfig() *Config {
	accs := DevAccounts()
	cfg := &Config{
		Owner:           accs[0].Address,
		DevAddr:         accs[1].Address,
		RewardPerTick:   units(10, 18),
		StartTick:       0,
		EndTick:         1_000_000,
		VestingDuration: 86400,
		LockingDuration: 86400,
		DevCut:          DevCut{Numerator: 1, Denominator: 10},
		VestingReserve:  units(20_000_000, 18),
		Pools: []Pool{
			{StakeToken: DevLP1, AllocPoint: 100},
			{StakeToken: DevLP2, AllocPoint: 50},
		},
		Clocks: Clocks{Reward: ClockCounter, Schedule: ClockWall},
		Faucet: true,
	}
	for _, a := range accs {
		for _, tok := range []farm.Address{DevLP1, DevLP2} {
			cfg.Balances = append(cfg.Balances, Balance{tok, a.Address, units(1_000_000, 18)})
		}
	}
	if err := cfg.Validate(); err != nil {
		panic(fmt.Errorf("devnet genesis: %w", err))
	}
	return cfg
}
