// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package middleware

import (
	"bufio"
	"bytes"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/firofarm/chef/log"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// RequestLoggerMiddleware logs every request when enabled is set.
// Slow requests and, optionally, 5xx responses are logged regardless.
func RequestLoggerMiddleware(
	logger log.Logger,
	enabled *atomic.Bool,
	slowQueriesThreshold time.Duration,
	log5xxErrors bool,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled.Load() && slowQueriesThreshold == 0 && !log5xxErrors {
				next.ServeHTTP(w, r)
				return
			}
			// the body can only be read once, hand a copy to the next handler
			var bodyBytes []byte
			if r.Body != nil {
				var err error
				bodyBytes, err = io.ReadAll(r.Body)
				if err != nil {
					logger.Warn("unexpected body read error", "err", err)
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)
			duration := time.Since(start)

			slow := slowQueriesThreshold > 0 && duration > slowQueriesThreshold
			failed := log5xxErrors && rec.status >= http.StatusInternalServerError
			if !enabled.Load() && !slow && !failed {
				return
			}

			ctx := []any{
				"DurationMs", duration.Milliseconds(),
				"Timestamp", time.Now().Unix(),
				"URI", r.URL.String(),
				"Method", r.Method,
				"Status", rec.status,
				"Body", string(bodyBytes),
			}
			if slow || failed {
				logger.Warn("API Request", ctx...)
			} else {
				logger.Info("API Request", ctx...)
			}
		})
	}
}
