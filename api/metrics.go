// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bufio"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/firofarm/chef/metrics"
)

var (
	metricHTTPReqCounter  = metrics.LazyLoadCounterVec("api_request_count", []string{"name", "code", "method"})
	metricHTTPReqDuration = metrics.LazyLoadHistogramVec("api_duration_ms", []string{"name", "code", "method"}, metrics.BucketHTTPReqs)
)

// metricsResponseWriter is a wrapper around http.ResponseWriter that captures the status code.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{w, http.StatusOK}
}

func (m *metricsResponseWriter) WriteHeader(code int) {
	m.statusCode = code
	m.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades pass through the wrapper.
func (m *metricsResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := m.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	return h.Hijack()
}

// routeName turns "GET /pools/{pid}" into "pools_pid".
func routeName(route *mux.Route) string {
	name := route.GetName()
	if idx := strings.IndexByte(name, ' '); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.NewReplacer("{", "", "}", "", "-", "_").Replace(name)
	return strings.ReplaceAll(strings.Trim(name, "/"), "/", "_")
}

// metricsMiddleware records count and latency of every routed request.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := mux.CurrentRoute(r)
		if route == nil || route.GetName() == "" {
			next.ServeHTTP(w, r)
			return
		}
		// websocket connections are tracked by the subscriptions gauge
		if strings.HasPrefix(route.GetName(), "WS ") {
			next.ServeHTTP(w, r)
			return
		}

		now := time.Now()
		mrw := newMetricsResponseWriter(w)
		next.ServeHTTP(mrw, r)

		labels := map[string]string{
			"name":   routeName(route),
			"code":   strconv.Itoa(mrw.statusCode),
			"method": r.Method,
		}
		metricHTTPReqCounter().AddWithLabel(1, labels)
		metricHTTPReqDuration().ObserveWithLabels(time.Since(now).Milliseconds(), labels)
	})
}
