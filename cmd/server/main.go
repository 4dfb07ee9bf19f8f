package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rxtech-lab/argo-ta/internal/cache"
	"github.com/rxtech-lab/argo-ta/internal/config"
	"github.com/rxtech-lab/argo-ta/internal/datasource"
	"github.com/rxtech-lab/argo-ta/internal/engine"
	"github.com/rxtech-lab/argo-ta/internal/logger"
	"github.com/rxtech-lab/argo-ta/internal/metrics"
	"github.com/rxtech-lab/argo-ta/internal/server"
	"github.com/rxtech-lab/argo-ta/internal/version"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	if addr := cmd.String("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	appLog, err := logger.NewLoggerWithLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer appLog.Sync()

	m := metrics.NewMetrics(nil)
	eng := engine.NewEngineV1(
		engine.WithLogger(appLog),
		engine.WithMetrics(m),
		engine.WithCache(cache.NewCacheV1(cfg.Cache.TTL, cfg.Cache.MaxEntries)),
	)

	opts := []server.Option{
		server.WithIndicators(cfg.Indicators),
		server.WithChart(cfg.Chart),
		server.WithMetrics(m),
		server.WithLogger(appLog),
	}

	if dataPath := cmd.String("data"); dataPath != "" {
		duck, err := datasource.NewDuckDBDataSource(":memory:", appLog)
		if err != nil {
			return err
		}

		source := datasource.NewCachedDataSource(duck, cfg.Cache.TTL, cfg.Cache.MaxEntries)
		defer source.Close()

		if err := source.Initialize(dataPath); err != nil {
			return err
		}

		opts = append(opts, server.WithDataSource(source))
	}

	srv := server.NewServer(cfg.Server, eng, opts...)
	if err := srv.Start(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	appLog.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		appLog.Error("HTTP server shutdown failed", zap.Error(err))

		return err
	}

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "server",
		Usage:   "Serve the indicator engine over HTTP",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file",
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address, overrides server.addr",
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Optional .parquet or .csv file served by the symbol routes",
			},
		},
		Action: serveAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
