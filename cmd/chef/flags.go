// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"time"

	cli "gopkg.in/urfave/cli.v1"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for farm databases",
	}
	genesisFlag = cli.StringFlag{
		Name:  "genesis",
		Usage: "path to a farm genesis YAML file (devnet if not set)",
	}
	persistFlag = cli.BoolFlag{
		Name:  "persist",
		Usage: "save farm data to disk (kept in memory if not set)",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8680",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiTimeoutFlag = cli.Uint64Flag{
		Name:  "api-timeout",
		Value: 10000,
		Usage: "API request timeout value in milliseconds",
	}
	apiEventsLimitFlag = cli.Uint64Flag{
		Name:  "api-events-limit",
		Value: 1000,
		Usage: "limit the number of events returned by /events API",
	}
	apiSubscriptionCacheFlag = cli.Uint64Flag{
		Name:  "api-subscription-cache",
		Value: 1000,
		Usage: "number of encoded events kept for websocket subscribers",
	}
	apiSlowQueriesThresholdFlag = cli.Uint64Flag{
		Name:  "api-slow-queries-threshold",
		Value: 0,
		Usage: "all queries with duration (ms) above the threshold will be logged",
	}
	apiLog5xxErrorsFlag = cli.BoolFlag{
		Name:  "api-log-5xx-errors",
		Usage: "log all requests answered with a 5xx status",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	skipEventsFlag = cli.BoolFlag{
		Name:  "skip-events",
		Usage: "skip writing events (/events API will be disabled)",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-5)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	cacheFlag = cli.IntFlag{
		Name:  "cache",
		Value: 256,
		Usage: "megabytes of ram allocated to the state cache",
	}
	tickIntervalFlag = cli.DurationFlag{
		Name:  "tick-interval",
		Value: 10 * time.Second,
		Usage: "interval between reward ticks when the reward clock is a counter",
	}
	ntpServerFlag = cli.StringFlag{
		Name:  "ntp-server",
		Value: "pool.ntp.org",
		Usage: "NTP server used to detect system clock drift (disabled if empty)",
	}
	pprofFlag = cli.BoolFlag{
		Name:  "pprof",
		Usage: "turn on go-pprof",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
	enableAdminFlag = cli.BoolFlag{
		Name:  "enable-admin",
		Usage: "enables admin server",
	}
	adminAddrFlag = cli.StringFlag{
		Name:  "admin-addr",
		Value: "localhost:2113",
		Usage: "admin service listening address",
	}
	outputFlag = cli.StringFlag{
		Name:  "output",
		Usage: "output file (stdout if not set)",
	}
)
