// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLazyLoggerFollowsRoot(t *testing.T) {
	old := Root()
	t.Cleanup(func() { SetDefault(old) })

	logger := WithContext("pkg", "chef")
	logger.Info("dropped before setup")

	var level slog.LevelVar
	level.Set(LevelInfo)
	var buf bytes.Buffer
	SetDefault(NewLogger(JSONHandlerWithLevel(&buf, &level)))

	logger.Debug("filtered")
	logger.With("pid", 1).Info("deposit", "amount", 100)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "deposit", rec["msg"])
	assert.Equal(t, "chef", rec["pkg"])
	assert.Equal(t, float64(1), rec["pid"])
	assert.Equal(t, float64(100), rec["amount"])

	// a second swap is picked up too
	var buf2 bytes.Buffer
	SetDefault(NewLogger(JSONHandlerWithLevel(&buf2, &level)))
	logger.Warn("withdraw")
	assert.Contains(t, buf2.String(), `"msg":"withdraw"`)
	assert.NotContains(t, buf.String(), "withdraw")
}

func TestFromLegacyLevel(t *testing.T) {
	assert.Equal(t, LevelInfo, FromLegacyLevel(3))
	assert.Equal(t, LevelTrace, FromLegacyLevel(5))
	assert.Equal(t, "info", LevelString(LevelInfo))
}

func TestLevelVarChangesTakeEffect(t *testing.T) {
	var level slog.LevelVar
	level.Set(LevelWarn)

	var jsonBuf, termBuf bytes.Buffer
	jsonLog := NewLogger(JSONHandlerWithLevel(&jsonBuf, &level))
	termLog := NewLogger(NewTerminalHandlerWithLevel(&termBuf, &level, false)).With("pkg", "chef")

	jsonLog.Info("before")
	termLog.Info("before")
	assert.Zero(t, jsonBuf.Len())
	assert.Zero(t, termBuf.Len())

	level.Set(LevelDebug)
	jsonLog.Debug("after", "amount", big.NewInt(42))
	termLog.Debug("after")
	assert.Contains(t, jsonBuf.String(), `"msg":"after"`)
	assert.Contains(t, jsonBuf.String(), `"amount":"42"`)
	assert.Contains(t, jsonBuf.String(), `"lvl":"debug"`)
	assert.Contains(t, termBuf.String(), "after")
	assert.Contains(t, termBuf.String(), "pkg=chef")

	level.Set(LevelError)
	termBuf.Reset()
	termLog.Warn("muted")
	assert.Zero(t, termBuf.Len())
}
