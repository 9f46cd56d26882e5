// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoopMetrics(t *testing.T) {
	server := httptest.NewServer(HTTPHandler())
	t.Cleanup(server.Close)

	Counter("deposits").Add(1)
	CounterVec("calls", []string{"op"}).AddWithLabel(1, map[string]string{"op": "deposit"})
	Histogram("latency", nil).Observe(3)
	HistogramVec("latency_vec", []string{"op"}, nil).ObserveWithLabels(3, map[string]string{"whatever": "x"})
	Gauge("staked").Set(10)
	GaugeVec("staked_vec", []string{"pool"}).SetWithLabel(10, map[string]string{"pool": "0"})

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
