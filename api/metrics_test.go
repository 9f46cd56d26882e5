// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firofarm/chef/api/pools"
	"github.com/firofarm/chef/api/subscriptions"
	"github.com/firofarm/chef/metrics"
	"github.com/firofarm/chef/test/testfarm"
)

func init() {
	metrics.InitializePrometheusMetrics()
}

func scrape(t *testing.T, ts *httptest.Server) map[string]*dto.MetricFamily {
	body, status := httpGet(t, ts.URL+"/metrics")
	require.Equal(t, http.StatusOK, status)
	parser := expfmt.TextParser{}
	families, err := parser.TextToMetricFamilies(bytes.NewReader(body))
	require.NoError(t, err)
	return families
}

// findMetric returns the series of family carrying exactly the given labels.
func findMetric(family *dto.MetricFamily, labels map[string]string) *dto.Metric {
	if family == nil {
		return nil
	}
outer:
	for _, m := range family.GetMetric() {
		if len(m.GetLabel()) != len(labels) {
			continue
		}
		for _, l := range m.GetLabel() {
			if labels[l.GetName()] != l.GetValue() {
				continue outer
			}
		}
		return m
	}
	return nil
}

func TestMetricsMiddleware(t *testing.T) {
	tf, err := testfarm.New()
	require.NoError(t, err)
	t.Cleanup(tf.Close)

	router := mux.NewRouter()
	pools.New(tf.Runtime).Mount(router, "/pools")
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	router.Use(metricsMiddleware)
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	httpGet(t, ts.URL+"/pools")
	httpGet(t, ts.URL+"/pools")
	_, code := httpGet(t, ts.URL+"/pools/9")
	assert.Equal(t, http.StatusNotFound, code)
	_, code = httpGet(t, ts.URL+"/pools/x")
	assert.Equal(t, http.StatusNotFound, code)

	families := scrape(t, ts)
	counts := families["firofarm_api_request_count"]
	require.NotNil(t, counts)

	m := findMetric(counts, map[string]string{"code": "200", "method": "GET", "name": "pools"})
	require.NotNil(t, m)
	assert.Equal(t, float64(2), m.GetCounter().GetValue())

	m = findMetric(counts, map[string]string{"code": "404", "method": "GET", "name": "pools_pid"})
	require.NotNil(t, m)
	assert.Equal(t, float64(1), m.GetCounter().GetValue())

	// unrouted requests carry no name and are not counted
	for _, m := range counts.GetMetric() {
		for _, l := range m.GetLabel() {
			if l.GetName() == "name" {
				assert.NotEmpty(t, l.GetValue())
			}
		}
	}

	durations := families["firofarm_api_duration_ms"]
	require.NotNil(t, durations)
	m = findMetric(durations, map[string]string{"code": "200", "method": "GET", "name": "pools"})
	require.NotNil(t, m)
	assert.Equal(t, uint64(2), m.GetHistogram().GetSampleCount())
}

func TestWebsocketMetrics(t *testing.T) {
	tf, err := testfarm.New()
	require.NoError(t, err)
	t.Cleanup(tf.Close)

	router := mux.NewRouter()
	subs := subscriptions.New(tf.Runtime, []string{"*"}, 10)
	subs.Mount(router, "/subscriptions")
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	router.Use(metricsMiddleware)
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	t.Cleanup(subs.Close)

	u := url.URL{Scheme: "ws", Host: strings.TrimPrefix(ts.URL, "http://"), Path: "/subscriptions/event"}
	active := func() float64 {
		m := findMetric(scrape(t, ts)["firofarm_api_active_websocket_count"], map[string]string{"subject": "event"})
		if m == nil {
			return 0
		}
		return m.GetGauge().GetValue()
	}

	conn1, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	require.NoError(t, err)
	defer conn1.Close()
	assert.Eventually(t, func() bool { return active() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn2, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return active() == 2 }, 2*time.Second, 10*time.Millisecond)

	conn2.Close()
	assert.Eventually(t, func() bool { return active() == 1 }, 2*time.Second, 10*time.Millisecond)

	// websocket routes are not counted as plain requests
	assert.Nil(t, findMetric(scrape(t, ts)["firofarm_api_request_count"],
		map[string]string{"code": "101", "method": "GET", "name": "subscriptions_event"}))
}

func TestRouteName(t *testing.T) {
	router := mux.NewRouter()
	for name, want := range map[string]string{
		"GET /pools":                           "pools",
		"GET /pools/{pid}":                     "pools_pid",
		"POST /pools/{pid}/emergency-withdraw": "pools_pid_emergency_withdraw",
		"POST /settings/reward-per-tick":       "settings_reward_per_tick",
	} {
		assert.Equal(t, want, routeName(router.NewRoute().Name(name)))
	}
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode
}
