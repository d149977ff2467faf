// The backend binary serves the HTTP job-control API: it schedules
// routing tests against the configured fabric, runs them with bounded
// concurrency and streams iteration telemetry to the frontend.
package main

import (
	"context"

	"github.com/SirJonasM/fpga-router/internal/server"
	"github.com/SirJonasM/fpga-router/pkg/cache"
	"github.com/SirJonasM/fpga-router/pkg/config"
	"github.com/SirJonasM/fpga-router/pkg/fabric"
	"github.com/SirJonasM/fpga-router/pkg/logger"
	"github.com/SirJonasM/fpga-router/pkg/metrics"
	"github.com/SirJonasM/fpga-router/pkg/telemetry"
)

func main() {
	cfg := config.MustLoad()

	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.InitMetrics(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
		m.SetServiceInfo(cfg.App.Version, cfg.App.Environment)
		metrics.Serve(cfg.Metrics.Port, cfg.Metrics.Path)
	}

	ctx := context.Background()
	provider, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		Version:     cfg.App.Version,
		Environment: cfg.App.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		logger.Fatal("could not init telemetry", "error", err)
	}
	defer provider.Shutdown(ctx)

	// Probe the fabric once: fail fast on a broken pip file and compute
	// the hash that keys the result cache.
	graph, err := fabric.FromFile(cfg.Router.PipsPath)
	if err != nil {
		logger.Fatal("could not load fabric graph", "error", err, "path", cfg.Router.PipsPath)
	}
	logger.Info("fabric graph loaded",
		"nodes", len(graph.Nodes),
		"edges", graph.EdgeCount(),
	)
	if m != nil {
		m.ObserveGraph(len(graph.Nodes), graph.EdgeCount())
	}

	var routeCache *cache.RouteCache
	graphHash := ""
	if cfg.Cache.Enabled {
		backend, err := cache.New(cache.FromConfig(&cfg.Cache))
		if err != nil {
			logger.Fatal("could not init cache", "error", err)
		}
		defer backend.Close()
		routeCache = cache.NewRouteCache(backend, cfg.Cache.DefaultTTL)
		graphHash = cache.GraphHash(graph)
	}

	state := server.NewAppState(cfg, m, routeCache, graphHash)
	srv := server.New(cfg, state)
	if err := srv.Start(); err != nil {
		logger.Fatal("server failed", "error", err)
	}
}
