package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	devenv "marketwatch-backend/dev/env"
	"marketwatch-backend/internal/components/chrono"
	"marketwatch-backend/internal/pagecache"
	"marketwatch-backend/internal/scrapers/marketwatch"
	"marketwatch-backend/internal/server"
	"marketwatch-backend/internal/sessions"
	"marketwatch-backend/lib/configutil"
	"marketwatch-backend/lib/serviceutil"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

func main() {
	configPath := flag.String("config", "config.json5", "The config file.")
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	initialRecord := flag.Bool("snapshot", false, "Record snapshots of the configured games immediately on run.")
	flag.Parse()

	ctx, cancel := serviceutil.SignalContext()
	defer cancel()

	tel := InitTelemetry(ctx, *verbose)

	cfg, err := configutil.ReadConfig[Config](*configPath)
	if errors.Is(err, os.ErrNotExist) {
		slog.Info("no config file, using defaults and the environment", "path", *configPath)
	} else if err != nil {
		serviceutil.Fatal("read config", err)
	}
	cfg.applyEnv()

	clock, err := chrono.NewStandardImpl()
	if err != nil {
		serviceutil.Fatal("load timezone", err)
	}

	clientOpts := marketwatch.ClientOptions{
		Output: restyOutput(*verbose),
	}
	if cfg.Cache != "" {
		dir, err := devenv.ResolvePath(cfg.Cache)
		if err != nil {
			serviceutil.Fatal("resolve cache dir", err)
		}
		cacheDb, err := pagecache.Open(dir)
		if err != nil {
			serviceutil.Fatal("open page cache", err)
		}
		defer cacheDb.Close()
		cache := pagecache.New(cacheDb, "marketwatch", clock)
		clientOpts.Cache = &cache
	}

	cache := sessions.NewCache(
		sessions.NewLoginFunc(clientOpts, tel),
		time.Duration(cfg.SessionTtlMinutes)*time.Minute,
		tel,
	)

	store, err := InitSnapshots(ctx, cfg, cache, clock, tel, *initialRecord)
	if err != nil {
		serviceutil.Fatal("init snapshots", err)
	}

	srv, err := server.New(server.Options{
		Sessions: func(ctx context.Context, email, password string) (server.API, error) {
			client, err := cache.Get(ctx, email, password)
			if err != nil {
				return nil, err
			}
			return client, nil
		},
		Forget:             cache.Forget,
		History:            store,
		DefaultCredentials: cfg.DefaultCredentials,
		AllowedOrigins:     cfg.AllowedOrigins,
		RateLimit:          rate.Limit(cfg.RateLimit),
		RateBurst:          cfg.RateBurst,
		Registerer:         prometheus.DefaultRegisterer,
	}, tel)
	if err != nil {
		serviceutil.Fatal("init server", err)
	}

	err = serviceutil.StartHttpServer(ctx, fmt.Sprintf(":%d", cfg.Port), srv.Handler())
	if err != nil {
		serviceutil.Fatal("serve http", err)
	}
}
