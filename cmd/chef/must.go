// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/beevik/ntp"
	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/firofarm/chef/clock"
	"github.com/firofarm/chef/eventdb"
	"github.com/firofarm/chef/farm"
	"github.com/firofarm/chef/genesis"
	"github.com/firofarm/chef/log"
	"github.com/firofarm/chef/lvldb"
)

func initLogger(lvl int, jsonLogs bool) *slog.LevelVar {
	var level slog.LevelVar
	level.Set(log.FromLegacyLevel(lvl))

	var handler slog.Handler
	if jsonLogs {
		handler = log.JSONHandlerWithLevel(os.Stdout, &level)
	} else {
		useColor := (isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())) &&
			os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandlerWithLevel(os.Stdout, &level, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
	return &level
}

// loadGenesis reads the genesis file, or returns the devnet genesis when none is given.
func loadGenesis(ctx *cli.Context) (*genesis.Config, bool, error) {
	path := ctx.String(genesisFlag.Name)
	if path == "" {
		return genesis.DevConfig(), true, nil
	}
	cfg, err := genesis.Load(path)
	if err != nil {
		return nil, false, err
	}
	return cfg, false, nil
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, "Library", "Application Support", "io.firofarm.chef")
		}
		return filepath.Join(home, ".firofarm")
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// instanceID identifies the data of a genesis.
func instanceID(cfg *genesis.Config) (farm.Bytes32, error) {
	data, err := cfg.Encode()
	if err != nil {
		return farm.Bytes32{}, err
	}
	return farm.Blake2b(data), nil
}

func makeInstanceDir(dataDir string, cfg *genesis.Config) (string, error) {
	if dataDir == "" {
		return "", fmt.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	id, err := instanceID(cfg)
	if err != nil {
		return "", err
	}
	instanceDir := filepath.Join(dataDir, fmt.Sprintf("instance-%x", id[:8]))
	if err := os.MkdirAll(instanceDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create instance dir [%v]", instanceDir)
	}
	return instanceDir, nil
}

func openMainDB(instanceDir string, cacheMB int) (*lvldb.LevelDB, error) {
	fdCache := suggestFDCache()
	log.Debug("fd cache", "n", fdCache)

	dir := filepath.Join(instanceDir, "main.db")
	db, err := lvldb.New(dir, lvldb.Options{
		CacheSize:              cacheMB / 2,
		OpenFilesCacheCapacity: fdCache,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open main database [%v]", dir)
	}
	return db, nil
}

func openEventDB(instanceDir string) (*eventdb.EventDB, error) {
	dir := filepath.Join(instanceDir, "events.db")
	db, err := eventdb.New(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "open event database [%v]", dir)
	}
	return db, nil
}

// normalizeCacheSize keeps the cache between 16MB and half the physical memory.
func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 16 {
		sizeMB = 16
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		log.Warn("failed to get total mem:", "err", err)
	} else {
		limitMB := int(mem.Total / 1024 / 1024 / 2)
		if sizeMB > limitMB {
			sizeMB = limitMB
			log.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

func suggestFDCache() int {
	limit, err := fdlimit.Current()
	if err != nil {
		log.Warn("failed to get fd limit", "err", err)
		return 500
	}
	if limit <= 1024 {
		log.Warn("low fd limit, increase it if possible", "limit", limit)
	}

	n := limit / 2
	if n > 5120 {
		return 5120
	}
	return n
}

// makeClock builds the clock for a genesis clock mode.
func makeClock(mode string) (clock.Clock, error) {
	switch mode {
	case genesis.ClockManual:
		return clock.NewManual(0), nil
	case genesis.ClockCounter:
		return clock.NewCounter(0), nil
	case genesis.ClockWall:
		return clock.Wall{}, nil
	}
	return nil, fmt.Errorf("unknown clock mode %q", mode)
}

// resumeClock moves a settable clock up to the last committed tick.
func resumeClock(c clock.Clock, tick uint64) error {
	s, ok := c.(clock.Settable)
	if !ok || s.Now() >= tick {
		return nil
	}
	return s.Set(tick)
}

// maxClockOffset is the drift above which vesting and lock maturity become noticeably off.
const maxClockOffset = 5 * time.Second

func checkClockOffset(server string) {
	resp, err := ntp.Query(server)
	if err != nil {
		log.Debug("failed to access NTP", "err", err)
		return
	}
	offset := resp.ClockOffset
	if offset < 0 {
		offset = -offset
	}
	if offset > maxClockOffset {
		log.Warn("clock offset detected", "offset", resp.ClockOffset)
	}
}

// watchClockOffset checks the system clock against server every hour until ctx is done.
func watchClockOffset(ctx context.Context, server string) {
	if server == "" {
		return
	}
	checkClockOffset(server)
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			checkClockOffset(server)
		}
	}
}

func printStartupMessage(
	w io.Writer,
	cfg *genesis.Config,
	devnet bool,
	instanceDir string,
	number, timestamp uint64,
	apiURL string,
) {
	fmt.Fprintf(w, `Starting %v
    Genesis      [ %v ]
    Reward token [ %v ]
    Window       [ %v - %v ]
    Clocks       [ reward %v #%v | schedule %v @%v ]
    Data dir     [ %v ]
    API portal   [ %v ]
`,
		fullVersion(),
		func() string {
			if devnet {
				return "devnet"
			}
			return "custom"
		}(),
		cfg.RewardTokenAddress(),
		cfg.StartTick, cfg.EndTick,
		cfg.Clocks.Reward, number, cfg.Clocks.Schedule, timestamp,
		instanceDir,
		apiURL)

	if !devnet {
		return
	}
	var b strings.Builder
	b.WriteString("    Dev accounts\n")
	for i, a := range genesis.DevAccounts() {
		role := ""
		switch a.Address {
		case cfg.Owner:
			role = " (owner)"
		case cfg.DevAddr:
			role = " (dev)"
		}
		fmt.Fprintf(&b, "      #%d %v %064x%s\n", i, a.Address, a.PrivateKey.D, role)
	}
	fmt.Fprint(w, b.String())
}
