// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis describes and applies the initial farm setup.
package genesis

import (
	"bytes"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/firofarm/chef/builtin"
	"github.com/firofarm/chef/builtin/chef"
	"github.com/firofarm/chef/farm"
)

// Clock modes.
const (
	ClockManual  = "manual"  // moved only through the API
	ClockCounter = "counter" // advances by one every tick interval
	ClockWall    = "wall"    // unix seconds
)

// Config is the farm genesis, usually loaded from YAML.
type Config struct {
	Owner              farm.Address          `yaml:"owner"`
	DevAddr            farm.Address          `yaml:"devAddr"`
	RewardToken        *farm.Address         `yaml:"rewardToken,omitempty"`
	RewardPerTick      *math.HexOrDecimal256 `yaml:"rewardPerTick"`
	StartTick          uint64                `yaml:"startTick"`
	EndTick            uint64                `yaml:"endTick"`
	VestingDuration    uint64                `yaml:"vestingDuration"`
	LockingDuration    uint64                `yaml:"lockingDuration"`
	VestingStartOffset uint64                `yaml:"vestingStartOffset,omitempty"`
	VestingCliffOffset uint64                `yaml:"vestingCliffOffset,omitempty"`
	DevCut             DevCut                `yaml:"devCut"`
	VestingReserve     *math.HexOrDecimal256 `yaml:"vestingReserve"`
	Pools              []Pool                `yaml:"pools"`
	Balances           []Balance             `yaml:"balances"`
	Clocks             Clocks                `yaml:"clocks"`
	Faucet             bool                  `yaml:"faucet"`
}

// DevCut is the share of each reward minted to the developer account.
type DevCut struct {
	Numerator   uint64 `yaml:"numerator"`
	Denominator uint64 `yaml:"denominator"`
}

// Pool is a pool registered at genesis.
type Pool struct {
	StakeToken farm.Address `yaml:"stakeToken"`
	AllocPoint uint64       `yaml:"allocPoint"`
}

// Balance is an initial token balance.
type Balance struct {
	Token   farm.Address          `yaml:"token"`
	Account farm.Address          `yaml:"account"`
	Amount  *math.HexOrDecimal256 `yaml:"amount"`
}

// Clocks selects the reward and schedule clock modes.
type Clocks struct {
	Reward   string `yaml:"reward"`
	Schedule string `yaml:"schedule"`
}

// RewardTokenAddress returns the reward token, the builtin FIRO token by default.
func (c *Config) RewardTokenAddress() farm.Address {
	if c.RewardToken != nil {
		return *c.RewardToken
	}
	return builtin.FiroToken
}

// ChefConfig returns the chef initialization settings.
func (c *Config) ChefConfig() chef.Config {
	return chef.Config{
		DevAddr:            c.DevAddr,
		RewardToken:        c.RewardTokenAddress(),
		RewardPerTick:      bigOf(c.RewardPerTick),
		StartTick:          c.StartTick,
		EndTick:            c.EndTick,
		LockingDuration:    c.LockingDuration,
		VestingStartOffset: c.VestingStartOffset,
		VestingCliffOffset: c.VestingCliffOffset,
		DevCutNumerator:    c.DevCut.Numerator,
		DevCutDenominator:  c.DevCut.Denominator,
	}
}

func bigOf(v *math.HexOrDecimal256) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set((*big.Int)(v))
}

func validClock(mode string) bool {
	switch mode {
	case ClockManual, ClockCounter, ClockWall:
		return true
	}
	return false
}

// Validate checks the config is usable.
func (c *Config) Validate() error {
	if c.Owner.IsZero() {
		return errors.New("owner must be set")
	}
	if c.StartTick >= c.EndTick {
		return fmt.Errorf("startTick %v must be before endTick %v", c.StartTick, c.EndTick)
	}
	if c.RewardPerTick == nil || (*big.Int)(c.RewardPerTick).Sign() < 0 {
		return errors.New("rewardPerTick must be a non-negative integer")
	}
	if c.VestingDuration == 0 {
		return errors.New("vestingDuration must not be 0")
	}
	if c.DevCut.Denominator != 0 && c.DevCut.Numerator > c.DevCut.Denominator {
		return errors.New("devCut numerator exceeds denominator")
	}
	if c.VestingReserve != nil && (*big.Int)(c.VestingReserve).Sign() < 0 {
		return errors.New("vestingReserve must not be negative")
	}
	seen := make(map[farm.Address]bool)
	for _, p := range c.Pools {
		if seen[p.StakeToken] {
			return fmt.Errorf("%v: duplicated pool", p.StakeToken)
		}
		seen[p.StakeToken] = true
	}
	for _, b := range c.Balances {
		if b.Amount == nil || (*big.Int)(b.Amount).Sign() < 1 {
			return fmt.Errorf("%v: balance must be a non-zero integer", b.Account)
		}
	}
	if !validClock(c.Clocks.Reward) {
		return fmt.Errorf("invalid reward clock %q", c.Clocks.Reward)
	}
	if !validClock(c.Clocks.Schedule) {
		return fmt.Errorf("invalid schedule clock %q", c.Clocks.Schedule)
	}
	return nil
}

// Load reads and validates a YAML config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis config")
	}
	return Parse(data)
}

// Parse decodes and validates a YAML config. Unknown fields are rejected.
func Parse(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode genesis config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid genesis config")
	}
	return &cfg, nil
}

// Encode returns the YAML form of the config.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
