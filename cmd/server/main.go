package main

import (
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"time"

	"geo_astar/pkg/api"
	"geo_astar/pkg/config"
	"geo_astar/pkg/graph"
	"geo_astar/pkg/logging"
	"geo_astar/pkg/routing"
)

func main() {
	configPath := flag.String("config", "", "Path to TOML config file (optional)")
	graphPath := flag.String("graph", "", "Path to preprocessed graph binary (overrides config)")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.New("text", "info", os.Stderr).Error("load config", "err", err)
		os.Exit(1)
	}
	if *graphPath != "" {
		cfg.Graph.Path = *graphPath
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	logger := logging.New(cfg.Log.Format, cfg.Log.Level, os.Stderr)
	slog.SetDefault(logger)

	start := time.Now()

	g, err := graph.ReadBinary(cfg.Graph.Path)
	if err != nil {
		logger.Error("load graph", "path", cfg.Graph.Path, "err", err)
		os.Exit(1)
	}
	logger.Info("graph loaded",
		"path", cfg.Graph.Path,
		"nodes", g.NumNodes(),
		"active_nodes", g.NumActiveNodes(),
		"edges", g.NumEdges(),
	)

	h, err := routing.HeuristicByName[graph.RoadNode, graph.RoadInfo](cfg.Routing.Heuristic)
	if err != nil {
		logger.Error("select heuristic", "err", err)
		os.Exit(1)
	}
	engine := routing.NewEngine(g,
		routing.WithMaxSnapDistance(cfg.Routing.MaxSnapMeters),
		routing.WithHeuristic(h),
		routing.WithLogger(logger),
	)
	logger.Info("ready", "elapsed", time.Since(start).Round(time.Millisecond))

	stats := api.StatsResponse{
		NumNodes:       g.NumNodes(),
		NumActiveNodes: g.NumActiveNodes(),
		NumEdges:       g.NumEdges(),
		Heuristic:      cfg.Routing.Heuristic,
	}
	handlers := api.NewHandlers(engine, stats, logger)
	srv := api.NewServer(cfg.Server, handlers, logger)

	if err := api.ListenAndServe(srv, logger); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
