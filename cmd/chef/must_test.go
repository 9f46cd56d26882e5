// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firofarm/chef/builtin"
	"github.com/firofarm/chef/clock"
	"github.com/firofarm/chef/eventdb"
	"github.com/firofarm/chef/genesis"
	"github.com/firofarm/chef/test/testfarm"
)

func TestMakeClock(t *testing.T) {
	c, err := makeClock(genesis.ClockManual)
	require.NoError(t, err)
	assert.IsType(t, &clock.Manual{}, c)

	c, err = makeClock(genesis.ClockCounter)
	require.NoError(t, err)
	assert.IsType(t, &clock.Counter{}, c)

	c, err = makeClock(genesis.ClockWall)
	require.NoError(t, err)
	assert.Equal(t, clock.Wall{}, c)

	_, err = makeClock("sundial")
	assert.Error(t, err)
}

func TestResumeClock(t *testing.T) {
	c := clock.NewCounter(0)
	require.NoError(t, resumeClock(c, 42))
	assert.Equal(t, uint64(42), c.Now())

	// never moved backwards
	require.NoError(t, resumeClock(c, 10))
	assert.Equal(t, uint64(42), c.Now())

	// wall clocks are left alone
	assert.NoError(t, resumeClock(clock.Wall{}, 1<<62))
}

func TestInstanceDir(t *testing.T) {
	dataDir := t.TempDir()

	dir1, err := makeInstanceDir(dataDir, genesis.DevConfig())
	require.NoError(t, err)
	dir2, err := makeInstanceDir(dataDir, genesis.DevConfig())
	require.NoError(t, err)
	assert.Equal(t, dir1, dir2)
	info, err := os.Stat(dir1)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	cfg := genesis.DevConfig()
	cfg.EndTick++
	dir3, err := makeInstanceDir(dataDir, cfg)
	require.NoError(t, err)
	assert.NotEqual(t, dir1, dir3)

	_, err = makeInstanceDir("", cfg)
	assert.Error(t, err)
}

func TestNormalizeCacheSize(t *testing.T) {
	assert.Equal(t, 16, normalizeCacheSize(1))
	assert.LessOrEqual(t, normalizeCacheSize(1<<40), 1<<40)
}

func TestExportEvents(t *testing.T) {
	tf, err := testfarm.New()
	require.NoError(t, err)
	t.Cleanup(tf.Close)

	alice := tf.Account(0)
	_, err = tf.Runtime.Approve(alice, genesis.DevLP1, builtin.Chef.Address, big.NewInt(100))
	require.NoError(t, err)
	_, err = tf.Runtime.Deposit(alice, 0, big.NewInt(100))
	require.NoError(t, err)

	total, err := tf.EventDB.Count()
	require.NoError(t, err)
	require.NotZero(t, total)

	var out, progress bytes.Buffer
	n, err := exportEvents(tf.EventDB, &out, &progress)
	require.NoError(t, err)
	assert.Equal(t, total, n)

	var (
		lines     uint64
		deposited bool
	)
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var ev eventdb.Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &ev))
		lines++
		assert.Equal(t, int64(lines), ev.ID)
		if ev.Name == "Deposit" && ev.Account == alice {
			deposited = true
		}
	}
	assert.Equal(t, total, lines)
	assert.True(t, deposited)
}

func TestExportEventsFromFile(t *testing.T) {
	dir := t.TempDir()
	db, err := openEventDB(dir)
	require.NoError(t, err)
	defer db.Close()
	_, err = os.Stat(filepath.Join(dir, "events.db"))
	require.NoError(t, err)

	var out bytes.Buffer
	n, err := exportEvents(db, &out, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, out.String())
}

func TestPrintStartupMessage(t *testing.T) {
	cfg := genesis.DevConfig()
	var buf bytes.Buffer
	printStartupMessage(&buf, cfg, true, "Memory", 7, 1000, "http://localhost:8680/")

	msg := buf.String()
	assert.Contains(t, msg, "devnet")
	assert.Contains(t, msg, "http://localhost:8680/")
	assert.Contains(t, msg, "reward counter #7")
	assert.Contains(t, msg, cfg.Owner.String()+" ")
	assert.Contains(t, msg, "(owner)")
	assert.Contains(t, msg, "(dev)")

	buf.Reset()
	printStartupMessage(&buf, cfg, false, "/data", 0, 0, "")
	assert.NotContains(t, buf.String(), "Dev accounts")
}
