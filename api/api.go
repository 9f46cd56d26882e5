// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/firofarm/chef/api/clock"
	"github.com/firofarm/chef/api/events"
	"github.com/firofarm/chef/api/locks"
	"github.com/firofarm/chef/api/middleware"
	"github.com/firofarm/chef/api/pools"
	"github.com/firofarm/chef/api/settings"
	"github.com/firofarm/chef/api/subscriptions"
	"github.com/firofarm/chef/api/tokens"
	"github.com/firofarm/chef/api/vesting"
	"github.com/firofarm/chef/log"
	"github.com/firofarm/chef/runtime"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins       string
	EventsLimit          uint64
	SubscriptionCache    uint32
	PprofOn              bool
	SkipEvents           bool
	EnableMetrics        bool
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	Log5xxErrors         bool
}

// New returns the farm api handler and a func that drops websocket subscribers.
func New(rt *runtime.Runtime, opts Options) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	pools.New(rt).
		Mount(router, "/pools")
	settings.New(rt).
		Mount(router, "/settings")
	vesting.New(rt).
		Mount(router, "/vesting")
	locks.New(rt).
		Mount(router, "/locks")
	tokens.New(rt).
		Mount(router, "/tokens")
	clock.New(rt).
		Mount(router, "/clock")
	if !opts.SkipEvents {
		events.New(rt.EventDB(), opts.EventsLimit).
			Mount(router, "/events")
	}
	subs := subscriptions.New(rt, origins, opts.SubscriptionCache)
	subs.Mount(router, "/subscriptions")

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
	)(handler)

	enabled := opts.EnableReqLogger
	if enabled == nil {
		enabled = &atomic.Bool{}
	}
	handler = middleware.RequestLoggerMiddleware(logger, enabled, opts.SlowQueriesThreshold, opts.Log5xxErrors)(handler)

	return handler.ServeHTTP, subs.Close
}
