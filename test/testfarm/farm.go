// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package testfarm builds a fully initialized in-memory farm for tests.
package testfarm

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/firofarm/chef/clock"
	"github.com/firofarm/chef/eventdb"
	"github.com/firofarm/chef/farm"
	"github.com/firofarm/chef/genesis"
	"github.com/firofarm/chef/kv"
	"github.com/firofarm/chef/lvldb"
	"github.com/firofarm/chef/runtime"
)

// Farm is a runtime over memory stores, driven by manual clocks.
type Farm struct {
	Runtime  *runtime.Runtime
	Store    kv.Closer
	EventDB  *eventdb.EventDB
	Reward   *clock.Manual
	Schedule *clock.Manual
	Genesis  *genesis.Config
}

// Config returns the test genesis: one reward per tick from tick 100, no dev cut,
// two pools of weight 1 and every dev account holding 10000 of each LP token.
func Config() *genesis.Config {
	cfg := genesis.DevConfig()
	cfg.RewardPerTick = (*math.HexOrDecimal256)(big.NewInt(1))
	cfg.StartTick = 100
	cfg.EndTick = 100_000
	cfg.DevCut = genesis.DevCut{}
	cfg.VestingReserve = (*math.HexOrDecimal256)(big.NewInt(1_000_000_000))
	cfg.Pools = []genesis.Pool{
		{StakeToken: genesis.DevLP1, AllocPoint: 1},
		{StakeToken: genesis.DevLP2, AllocPoint: 1},
	}
	for i := range cfg.Balances {
		cfg.Balances[i].Amount = (*math.HexOrDecimal256)(big.NewInt(10_000))
	}
	cfg.Clocks = genesis.Clocks{Reward: genesis.ClockManual, Schedule: genesis.ClockManual}
	return cfg
}

// New creates a farm built from Config.
func New() (*Farm, error) {
	return NewWithConfig(Config())
}

// NewWithConfig creates a farm built from cfg.
func NewWithConfig(cfg *genesis.Config) (*Farm, error) {
	return build(cfg, true)
}

// NewWithoutEvents creates a farm built from Config that keeps no event db,
// as a node started with event storage skipped.
func NewWithoutEvents() (*Farm, error) {
	return build(Config(), false)
}

func build(cfg *genesis.Config, withEvents bool) (*Farm, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return nil, err
	}
	var events *eventdb.EventDB
	if withEvents {
		if events, err = eventdb.NewMem(); err != nil {
			db.Close()
			return nil, err
		}
	}
	f := &Farm{
		Store:    db,
		EventDB:  events,
		Reward:   clock.NewManual(0),
		Schedule: clock.NewManual(0),
		Genesis:  cfg,
	}
	f.Runtime, err = runtime.New(db, runtime.Options{
		RewardClock:   f.Reward,
		ScheduleClock: f.Schedule,
		EventDB:       events,
		Faucet:        cfg.Faucet,
	})
	if err != nil {
		f.Close()
		return nil, err
	}
	if _, err := genesis.NewBuilder(cfg).Build(f.Runtime); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// Owner returns the farm owner.
func (f *Farm) Owner() farm.Address {
	return f.Genesis.Owner
}

// Account returns dev account i.
func (f *Farm) Account(i int) farm.Address {
	return genesis.DevAccounts()[i].Address
}

// Close releases the stores.
func (f *Farm) Close() {
	if f.EventDB != nil {
		f.EventDB.Close()
	}
	f.Store.Close()
}
