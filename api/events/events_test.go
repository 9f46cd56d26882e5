// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events_test

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

	"github.com/firofarm/chef/api/events"
	"github.com/firofarm/chef/builtin"
	"github.com/firofarm/chef/eventdb"
	"github.com/firofarm/chef/farm"
	"github.com/firofarm/chef/genesis"
	"github.com/firofarm/chef/test/testfarm"
)

const limit = 10

var (
	ts *httptest.Server
	tf *testfarm.Farm
)

func TestEvents(t *testing.T) {
	initEventServer(t)

	t.Run("filterByName", testFilterByName)
	t.Run("filterByAccount", testFilterByAccount)
	t.Run("filterByRange", testFilterByRange)
	t.Run("limit", testLimit)
	t.Run("badFilter", testBadFilter)
}

func initEventServer(t *testing.T) {
	var err error
	tf, err = testfarm.New()
	require.NoError(t, err)
	t.Cleanup(tf.Close)

	for i, tick := range []uint64{100, 200} {
		acc := tf.Account(i)
		require.NoError(t, tf.Reward.Set(tick))
		require.NoError(t, tf.Schedule.Set(tick*10))
		_, err = tf.Runtime.Approve(acc, genesis.DevLP1, builtin.Chef.Address, big.NewInt(50))
		require.NoError(t, err)
		_, err = tf.Runtime.Deposit(acc, 0, big.NewInt(50))
		require.NoError(t, err)
	}

	router := mux.NewRouter()
	events.New(tf.EventDB, limit).Mount(router, "/events")
	ts = httptest.NewServer(router)
	t.Cleanup(ts.Close)
}

func filter(t *testing.T, f any) []*eventdb.Event {
	body, status := httpPost(t, ts.URL+"/events", f)
	require.Equal(t, http.StatusOK, status, string(body))
	var evs []*eventdb.Event
	require.NoError(t, json.Unmarshal(body, &evs))
	return evs
}

func testFilterByName(t *testing.T) {
	evs := filter(t, eventdb.Filter{Names: []string{"Deposit"}})
	require.Len(t, evs, 2)
	assert.Equal(t, tf.Account(0), evs[0].Account)
	assert.Equal(t, builtin.Chef.Address, evs[0].Contract)
	assert.Equal(t, "deposit", evs[0].Op)
	assert.Equal(t, "50", evs[0].Args["amount"])
	assert.Equal(t, uint64(100), evs[0].Number)
	assert.Equal(t, uint64(1000), evs[0].Time)

	evs = filter(t, eventdb.Filter{Names: []string{"Deposit"}, Order: eventdb.DESC})
	require.Len(t, evs, 2)
	assert.Equal(t, tf.Account(1), evs[0].Account)

	evs = filter(t, eventdb.Filter{Names: []string{"Deposit", "Approval"}})
	assert.Len(t, evs, 4)
}

func testFilterByAccount(t *testing.T) {
	acc := tf.Account(1)
	chef := builtin.Chef.Address
	evs := filter(t, eventdb.Filter{Account: &acc, Contract: &chef})
	require.Len(t, evs, 1)
	assert.Equal(t, "Deposit", evs[0].Name)

	nobody := farm.BytesToAddress([]byte("nobody"))
	evs = filter(t, eventdb.Filter{Account: &nobody})
	assert.Empty(t, evs)
}

func testFilterByRange(t *testing.T) {
	evs := filter(t, eventdb.Filter{Names: []string{"Deposit"}, Range: &eventdb.Range{Unit: eventdb.Number, From: 150, To: 300}})
	require.Len(t, evs, 1)
	assert.Equal(t, tf.Account(1), evs[0].Account)

	evs = filter(t, eventdb.Filter{Names: []string{"Deposit"}, Range: &eventdb.Range{Unit: eventdb.Time, From: 0, To: 1500}})
	require.Len(t, evs, 1)
	assert.Equal(t, tf.Account(0), evs[0].Account)
}

func testLimit(t *testing.T) {
	_, status := httpPost(t, ts.URL+"/events", eventdb.Filter{Options: &eventdb.Options{Limit: limit + 1}})
	assert.Equal(t, http.StatusForbidden, status)

	evs := filter(t, eventdb.Filter{Names: []string{"Deposit", "Approval"}, Options: &eventdb.Options{Offset: 1, Limit: 2}})
	assert.Len(t, evs, 2)
}

func testBadFilter(t *testing.T) {
	_, status := httpPost(t, ts.URL+"/events", eventdb.Filter{Range: &eventdb.Range{From: 10, To: 1}})
	assert.Equal(t, http.StatusBadRequest, status)

	_, status = httpPost(t, ts.URL+"/events", eventdb.Filter{Order: "sideways"})
	assert.Equal(t, http.StatusBadRequest, status)

	_, status = httpPost(t, ts.URL+"/events", eventdb.Filter{Range: &eventdb.Range{Unit: "block"}})
	assert.Equal(t, http.StatusBadRequest, status)
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
