// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/firofarm/chef/api"
	"github.com/firofarm/chef/api/admin/health"
	"github.com/firofarm/chef/clock"
	"github.com/firofarm/chef/cmd/chef/httpserver"
	"github.com/firofarm/chef/eventdb"
	"github.com/firofarm/chef/genesis"
	"github.com/firofarm/chef/log"
	"github.com/firofarm/chef/lvldb"
	"github.com/firofarm/chef/metrics"
	"github.com/firofarm/chef/runtime"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("Chef/%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Chef",
		Usage:     "Firofarm yield farming reward engine",
		Copyright: "2025 The Firofarm developers",
		Flags: []cli.Flag{
			dataDirFlag,
			genesisFlag,
			persistFlag,
			cacheFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			apiEventsLimitFlag,
			apiSubscriptionCacheFlag,
			apiSlowQueriesThresholdFlag,
			apiLog5xxErrorsFlag,
			enableAPILogsFlag,
			skipEventsFlag,
			verbosityFlag,
			jsonLogsFlag,
			tickIntervalFlag,
			ntpServerFlag,
			pprofFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			enableAdminFlag,
			adminAddrFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:   "genesis",
				Usage:  "print the devnet genesis as YAML, a starting point for custom farms",
				Flags:  []cli.Flag{outputFlag},
				Action: genesisAction,
			},
			{
				Name:  "export-events",
				Usage: "dump the events of a persisted farm as JSON lines",
				Flags: []cli.Flag{
					dataDirFlag,
					genesisFlag,
					outputFlag,
					verbosityFlag,
				},
				Action: exportEventsAction,
			},
			{
				Name:  "migrate",
				Usage: "upgrade the persisted state of a farm to the current schema",
				Flags: []cli.Flag{
					dataDirFlag,
					genesisFlag,
					cacheFlag,
					verbosityFlag,
				},
				Action: migrateAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	logLevel := initLogger(ctx.Int(verbosityFlag.Name), ctx.Bool(jsonLogsFlag.Name))
	defer func() { log.Info("exited") }()

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		if err := metrics.RegisterProcessCollector(); err != nil {
			log.Warn("failed to register process collector", "err", err)
		}
	}

	cfg, devnet, err := loadGenesis(ctx)
	if err != nil {
		return err
	}
	rewardClock, err := makeClock(cfg.Clocks.Reward)
	if err != nil {
		return err
	}
	scheduleClock, err := makeClock(cfg.Clocks.Schedule)
	if err != nil {
		return err
	}

	cacheMB := normalizeCacheSize(ctx.Int(cacheFlag.Name))
	log.Debug("cache size(MB)", "size", cacheMB)
	skipEvents := ctx.Bool(skipEventsFlag.Name)

	var (
		instanceDir string
		mainDB      *lvldb.LevelDB
		eventDB     *eventdb.EventDB
	)
	if ctx.Bool(persistFlag.Name) {
		if instanceDir, err = makeInstanceDir(ctx.String(dataDirFlag.Name), cfg); err != nil {
			return err
		}
		if mainDB, err = openMainDB(instanceDir, cacheMB); err != nil {
			return err
		}
		if !skipEvents {
			if eventDB, err = openEventDB(instanceDir); err != nil {
				mainDB.Close()
				return err
			}
		}
	} else {
		instanceDir = "Memory"
		if mainDB, err = lvldb.NewMem(); err != nil {
			return err
		}
		if !skipEvents {
			if eventDB, err = eventdb.NewMem(); err != nil {
				mainDB.Close()
				return err
			}
		}
	}
	defer func() { log.Info("closing main database..."); mainDB.Close() }()
	if eventDB != nil {
		defer func() { log.Info("closing event database..."); eventDB.Close() }()
	}
	schemaVersion, err := migrateStore(mainDB, nil)
	if err != nil {
		return err
	}
	log.Debug("schema", "version", schemaVersion)

	rt, err := runtime.New(mainDB, runtime.Options{
		RewardClock:   rewardClock,
		ScheduleClock: scheduleClock,
		CacheSize:     cacheMB / 2 * 1024 * 1024,
		EventDB:       eventDB,
		Faucet:        cfg.Faucet,
	})
	if err != nil {
		return err
	}
	built, err := genesis.NewBuilder(cfg).Build(rt)
	if err != nil {
		return errors.Wrap(err, "build genesis")
	}
	if built {
		log.Info("farm initialized", "owner", cfg.Owner, "pools", len(cfg.Pools))
	}

	bc := rt.BlockContext()
	if err := resumeClock(rewardClock, bc.Number); err != nil {
		return err
	}
	if err := resumeClock(scheduleClock, bc.Time); err != nil {
		return err
	}

	tickInterval := ctx.Duration(tickIntervalFlag.Name)
	if tickInterval <= 0 {
		return fmt.Errorf("-%s must be positive", tickIntervalFlag.Name)
	}
	var healthInterval time.Duration
	if _, ok := rewardClock.(*clock.Counter); ok {
		healthInterval = tickInterval
	}
	farmHealth := health.New(rt, healthInterval)
	farmHealth.Initialized(true)

	apiLogs := &atomic.Bool{}
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))

	handler, closeSubs := api.New(rt, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		EventsLimit:          ctx.Uint64(apiEventsLimitFlag.Name),
		SubscriptionCache:    uint32(ctx.Uint64(apiSubscriptionCacheFlag.Name)),
		PprofOn:              ctx.Bool(pprofFlag.Name),
		SkipEvents:           skipEvents,
		EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
		EnableReqLogger:      apiLogs,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		Log5xxErrors:         ctx.Bool(apiLog5xxErrorsFlag.Name),
	})
	defer func() { log.Info("closing subscriptions..."); closeSubs() }()

	apiURL, srvCloser, err := httpserver.StartAPIServer(
		ctx.String(apiAddrFlag.Name),
		handler,
		time.Duration(ctx.Uint64(apiTimeoutFlag.Name))*time.Millisecond,
	)
	if err != nil {
		return err
	}
	defer func() { log.Info("stopping API server..."); srvCloser() }()

	if ctx.Bool(enableMetricsFlag.Name) {
		url, closeFunc, err := httpserver.StartMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return err
		}
		defer func() { log.Info("stopping metrics server..."); closeFunc() }()
		log.Info("metrics server started", "url", url)
	}
	if ctx.Bool(enableAdminFlag.Name) {
		url, closeFunc, err := httpserver.StartAdminServer(ctx.String(adminAddrFlag.Name), logLevel, apiLogs, farmHealth)
		if err != nil {
			return err
		}
		defer func() { log.Info("stopping admin server..."); closeFunc() }()
		log.Info("admin server started", "url", url)
	}

	bc = rt.BlockContext()
	printStartupMessage(os.Stdout, cfg, devnet, instanceDir, bc.Number, bc.Time, apiURL)

	exitCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(exitCtx)
	if c, ok := rewardClock.(*clock.Counter); ok {
		g.Go(func() error { c.Run(gctx, tickInterval); return nil })
	}
	if c, ok := scheduleClock.(*clock.Counter); ok {
		// schedule ticks are seconds
		g.Go(func() error { c.Run(gctx, time.Second); return nil })
	}
	g.Go(func() error { farmHealth.Run(gctx); return nil })
	g.Go(func() error { watchClockOffset(gctx, ctx.String(ntpServerFlag.Name)); return nil })

	<-gctx.Done()
	log.Info("exiting...")
	return g.Wait()
}

func genesisAction(ctx *cli.Context) error {
	data, err := genesis.DevConfig().Encode()
	if err != nil {
		return err
	}
	if path := ctx.String(outputFlag.Name); path != "" {
		return os.WriteFile(path, data, 0o600)
	}
	_, err = os.Stdout.Write(data)
	return err
}
