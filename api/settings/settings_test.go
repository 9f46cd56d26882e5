// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package settings_test

import (
	"bytes"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firofarm/chef/api/settings"
	"github.com/firofarm/chef/api/utils"
	"github.com/firofarm/chef/builtin/reverts"
	"github.com/firofarm/chef/farm"
	"github.com/firofarm/chef/test/testfarm"
)

var (
	ts *httptest.Server
	tf *testfarm.Farm
)

func TestSettings(t *testing.T) {
	var err error
	tf, err = testfarm.New()
	require.NoError(t, err)
	t.Cleanup(tf.Close)

	router := mux.NewRouter()
	settings.New(tf.Runtime).Mount(router, "/settings")
	ts = httptest.NewServer(router)
	t.Cleanup(ts.Close)

	t.Run("getSettings", testGetSettings)
	t.Run("window", testWindow)
	t.Run("rewardPerTick", testRewardPerTick)
	t.Run("devCut", testDevCut)
	t.Run("ownership", testOwnership)
}

func getStatus(t *testing.T) *settings.Status {
	body, status := httpGet(t, ts.URL+"/settings")
	require.Equal(t, http.StatusOK, status)
	var s settings.Status
	require.NoError(t, json.Unmarshal(body, &s))
	return &s
}

func testGetSettings(t *testing.T) {
	require.NoError(t, tf.Reward.Set(42))
	require.NoError(t, tf.Schedule.Set(1000))

	s := getStatus(t)
	assert.Equal(t, tf.Owner(), s.Owner)
	assert.Equal(t, tf.Genesis.DevAddr, s.DevAddr)
	assert.Equal(t, uint64(100), s.StartTick)
	assert.Equal(t, uint64(100_000), s.EndTick)
	assert.Equal(t, uint64(2), s.TotalAllocPoint)
	assert.Equal(t, uint64(2), s.PoolLength)
	assert.Equal(t, big.NewInt(1), (*big.Int)(s.RewardPerTick))
	assert.Equal(t, uint64(42), s.Number)
	assert.Equal(t, uint64(1000), s.Time)
}

func testWindow(t *testing.T) {
	body, status := httpPost(t, ts.URL+"/settings/end", settings.TickRequest{Caller: tf.Owner(), Tick: 50})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, reverts.CodeInvalidWindow, errorCode(t, body))

	body, status = httpPost(t, ts.URL+"/settings/start", settings.TickRequest{Caller: tf.Account(2), Tick: 200})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, reverts.CodeUnauthorized, errorCode(t, body))

	_, status = httpPost(t, ts.URL+"/settings/start", settings.TickRequest{Caller: tf.Owner(), Tick: 200})
	require.Equal(t, http.StatusOK, status)
	_, status = httpPost(t, ts.URL+"/settings/end", settings.TickRequest{Caller: tf.Owner(), Tick: 5000})
	require.Equal(t, http.StatusOK, status)

	s := getStatus(t)
	assert.Equal(t, uint64(200), s.StartTick)
	assert.Equal(t, uint64(5000), s.EndTick)
}

func testRewardPerTick(t *testing.T) {
	_, status := httpPost(t, ts.URL+"/settings/reward-per-tick", settings.RewardPerTickRequest{Caller: tf.Owner(), Amount: "0x10"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, big.NewInt(16), (*big.Int)(getStatus(t).RewardPerTick))

	_, status = httpPost(t, ts.URL+"/settings/reward-per-tick", settings.RewardPerTickRequest{Caller: tf.Owner(), Amount: "-1"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func testDevCut(t *testing.T) {
	body, status := httpPost(t, ts.URL+"/settings/dev-cut", settings.DevCutRequest{Caller: tf.Owner(), DevCut: settings.DevCut{Numerator: 3, Denominator: 2}})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, reverts.CodeInvalidAmount, errorCode(t, body))

	_, status = httpPost(t, ts.URL+"/settings/dev-cut", settings.DevCutRequest{Caller: tf.Owner(), DevCut: settings.DevCut{Numerator: 1, Denominator: 10}})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, settings.DevCut{Numerator: 1, Denominator: 10}, getStatus(t).DevCut)

	// only the current dev may move the dev address
	_, status = httpPost(t, ts.URL+"/settings/dev-addr", settings.AddressRequest{Caller: tf.Owner(), Address: tf.Account(3)})
	assert.Equal(t, http.StatusForbidden, status)
	_, status = httpPost(t, ts.URL+"/settings/dev-addr", settings.AddressRequest{Caller: tf.Genesis.DevAddr, Address: tf.Account(3)})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, tf.Account(3), getStatus(t).DevAddr)
}

func testOwnership(t *testing.T) {
	body, status := httpPost(t, ts.URL+"/settings/owner", settings.AddressRequest{Caller: tf.Owner(), Address: farm.Address{}})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, reverts.CodeInvalidAmount, errorCode(t, body))

	_, status = httpPost(t, ts.URL+"/settings/owner", settings.AddressRequest{Caller: tf.Owner(), Address: tf.Account(4)})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, tf.Account(4), getStatus(t).Owner)

	_, status = httpPost(t, ts.URL+"/settings/end", settings.TickRequest{Caller: tf.Owner(), Tick: 6000})
	assert.Equal(t, http.StatusForbidden, status, "previous owner lost its rights")
}

func errorCode(t *testing.T, body []byte) string {
	var resp utils.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp.Code
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode
}

func httpPost(t *testing.T, url string, obj any) ([]byte, int) {
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	res, err := http.Post(url, "application/x-www-form-urlencoded", bytes.NewReader(data)) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode
}
