// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpserver

import (
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/firofarm/chef/co"
)

// requests bodies are small JSON documents
const maxBodySize = 200 * 1024

// StartAPIServer serves handler on addr. A non-zero timeout bounds every
// request except websocket upgrades.
func StartAPIServer(addr string, handler http.Handler, timeout time.Duration) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen API addr [%v]", addr)
	}
	if timeout > 0 {
		handler = handleAPITimeout(handler, timeout)
	}
	handler = requestBodyLimit(handler)

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/", func() {
		srv.Close()
		goes.Wait()
	}, nil
}

func handleAPITimeout(h http.Handler, timeout time.Duration) http.Handler {
	timed := http.TimeoutHandler(h, timeout, `{"error":"request timeout","code":""}`)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// hijacked connections can't go through the timeout writer
		if r.Header.Get("Upgrade") != "" {
			h.ServeHTTP(w, r)
			return
		}
		timed.ServeHTTP(w, r)
	})
}

func requestBodyLimit(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
		h.ServeHTTP(w, r)
	})
}
