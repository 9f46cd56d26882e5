// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tokens_test

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

	"github.com/firofarm/chef/api/tokens"
	"github.com/firofarm/chef/api/utils"
	"github.com/firofarm/chef/builtin/reverts"
	"github.com/firofarm/chef/genesis"
	"github.com/firofarm/chef/test/testfarm"
)

func newServer(t *testing.T, faucet bool) (*httptest.Server, *testfarm.Farm) {
	cfg := testfarm.Config()
	cfg.Faucet = faucet
	tf, err := testfarm.NewWithConfig(cfg)
	require.NoError(t, err)
	t.Cleanup(tf.Close)

	router := mux.NewRouter()
	tokens.New(tf.Runtime).Mount(router, "/tokens")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts, tf
}

func TestTokens(t *testing.T) {
	ts, tf := newServer(t, true)
	lp := genesis.DevLP2.String()
	carol, dave := tf.Account(3), tf.Account(4)

	balanceOf := func(addr string) *big.Int {
		body, status := httpGet(t, ts.URL+"/tokens/"+lp+"/balances/"+addr)
		require.Equal(t, http.StatusOK, status)
		var b tokens.Balance
		require.NoError(t, json.Unmarshal(body, &b))
		return (*big.Int)(b.Balance)
	}

	body, status := httpPost(t, ts.URL+"/tokens/"+lp+"/mint", tokens.TransferRequest{Caller: carol, To: carol, Amount: "50"})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, big.NewInt(10_050), balanceOf(carol.String()))

	_, status = httpPost(t, ts.URL+"/tokens/"+lp+"/transfer", tokens.TransferRequest{Caller: carol, To: dave, Amount: "20"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, big.NewInt(10_030), balanceOf(carol.String()))
	assert.Equal(t, big.NewInt(10_020), balanceOf(dave.String()))

	body, status = httpPost(t, ts.URL+"/tokens/"+lp+"/transfer", tokens.TransferRequest{Caller: carol, To: dave, Amount: "1000000"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, reverts.CodeInsufficientBalance, errorCode(t, body))

	_, status = httpPost(t, ts.URL+"/tokens/"+lp+"/approve", tokens.TransferRequest{Caller: carol, To: dave, Amount: "7"})
	require.Equal(t, http.StatusOK, status)
	body, status = httpGet(t, ts.URL+"/tokens/"+lp+"/allowances/"+carol.String()+"/"+dave.String())
	require.Equal(t, http.StatusOK, status)
	var a tokens.Allowance
	require.NoError(t, json.Unmarshal(body, &a))
	assert.Equal(t, big.NewInt(7), (*big.Int)(a.Allowance))

	body, status = httpGet(t, ts.URL+"/tokens/"+lp)
	require.Equal(t, http.StatusOK, status)
	var tok tokens.Token
	require.NoError(t, json.Unmarshal(body, &tok))
	assert.Equal(t, genesis.DevLP2, tok.Address)
	assert.Equal(t, big.NewInt(int64(len(genesis.DevAccounts()))*10_000+50), (*big.Int)(tok.TotalSupply))
}

func TestFaucetDisabled(t *testing.T) {
	ts, tf := newServer(t, false)

	body, status := httpPost(t, ts.URL+"/tokens/"+genesis.DevLP1.String()+"/mint", tokens.TransferRequest{Caller: tf.Owner(), To: tf.Owner(), Amount: "1"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, reverts.CodeUnauthorized, errorCode(t, body))
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
