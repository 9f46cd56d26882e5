// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/firofarm/chef/api/admin/apilogs"
	healthAPI "github.com/firofarm/chef/api/admin/health"
	"github.com/firofarm/chef/api/admin/loglevel"
)

func New(logLevel *slog.LevelVar, apiLogs *atomic.Bool, health *healthAPI.Health) http.HandlerFunc {
	router := mux.NewRouter()
	sub := router.PathPrefix("/admin").Subrouter()

	loglevel.New(logLevel).Mount(sub, "/loglevel")
	apilogs.New(apiLogs).Mount(sub, "/apilogs")
	healthAPI.NewAPI(health).Mount(sub, "/health")

	handler := handlers.CompressHandler(router)

	return handler.ServeHTTP
}
