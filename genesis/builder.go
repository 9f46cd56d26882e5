// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/pkg/errors"

	"github.com/firofarm/chef/builtin"
	"github.com/firofarm/chef/log"
	"github.com/firofarm/chef/runtime"
	"github.com/firofarm/chef/xenv"
)

var logger = log.WithContext("pkg", "genesis")

// Builder applies a genesis config through a runtime, as a single call by the owner.
type Builder struct {
	cfg *Config
}

// NewBuilder creates a builder for cfg.
func NewBuilder(cfg *Config) *Builder {
	return &Builder{cfg}
}

// Build initializes the contracts, funds the vesting reserve and initial balances and
// registers the initial pools. It does nothing if the farm is already initialized,
// reporting whether it built.
func (b *Builder) Build(rt *runtime.Runtime) (bool, error) {
	if err := b.cfg.Validate(); err != nil {
		return false, err
	}

	initialized := false
	if err := rt.Call(func(_ *xenv.BlockContext, c *runtime.Contracts) error {
		owner, err := c.Chef.Owner()
		initialized = !owner.IsZero()
		return err
	}); err != nil {
		return false, err
	}
	if initialized {
		logger.Debug("farm already initialized, genesis skipped")
		return false, nil
	}

	cfg := b.cfg
	rewardToken := cfg.RewardTokenAddress()
	receipt, err := rt.Execute(cfg.Owner, "genesis", func(env *xenv.Environment, c *runtime.Contracts) error {
		if err := c.Vesting.Initialize(env, rewardToken, builtin.Chef.Address, cfg.VestingDuration); err != nil {
			return errors.Wrap(err, "initialize vesting")
		}
		if err := c.Locking.Initialize(env, builtin.Chef.Address); err != nil {
			return errors.Wrap(err, "initialize locking")
		}
		if err := c.Chef.Initialize(env, cfg.ChefConfig()); err != nil {
			return errors.Wrap(err, "initialize chef")
		}
		if reserve := bigOf(cfg.VestingReserve); reserve.Sign() > 0 {
			if err := c.Tokens.Mint(rewardToken, builtin.Vesting.Address, reserve); err != nil {
				return errors.Wrap(err, "fund vesting reserve")
			}
		}
		for _, bal := range cfg.Balances {
			if err := c.Tokens.Mint(bal.Token, bal.Account, bigOf(bal.Amount)); err != nil {
				return errors.Wrapf(err, "mint %v to %v", bal.Token, bal.Account)
			}
		}
		for _, p := range cfg.Pools {
			if _, err := c.Chef.AddPool(env, p.AllocPoint, p.StakeToken, false); err != nil {
				return errors.Wrapf(err, "add pool %v", p.StakeToken)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	logger.Info("genesis built", "owner", cfg.Owner, "pools", len(cfg.Pools), "number", receipt.Number, "time", receipt.Time)
	return true, nil
}
