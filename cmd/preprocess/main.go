package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"geo_astar/pkg/graph"
	"geo_astar/pkg/logging"
	osmparser "geo_astar/pkg/osm"
)

func main() {
	input := flag.String("input", "", "Path to .osm.pbf file")
	output := flag.String("output", "graph.bin", "Output binary graph file path")
	bbox := flag.String("bbox", "", "Bounding box filter: minLat,minLng,maxLat,maxLng (e.g. 1.15,103.6,1.48,104.1)")
	singapore := flag.Bool("singapore", false, "Shortcut for --bbox 1.15,103.6,1.48,104.1 (Singapore bounding box)")
	kl := flag.Bool("kl", false, "Shortcut for --bbox 2.75,101.2,3.5,102.0 (Selangor + Kuala Lumpur bounding box)")
	keepAll := flag.Bool("keep-all", false, "Keep every connected component instead of only the largest")
	logFormat := flag.String("log-format", "text", "Log format: text or json")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	logger := logging.New(*logFormat, *logLevel, os.Stderr)

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: preprocess --input <file.osm.pbf> [--output graph.bin] [--singapore | --kl | --bbox minLat,minLng,maxLat,maxLng] [--keep-all]")
		os.Exit(1)
	}

	opts := osmparser.ParseOptions{Logger: logger}
	switch {
	case *kl:
		opts.BBox = osmparser.BBox{MinLat: 2.75, MaxLat: 3.5, MinLng: 101.2, MaxLng: 102.0}
	case *singapore:
		opts.BBox = osmparser.BBox{MinLat: 1.15, MaxLat: 1.48, MinLng: 103.6, MaxLng: 104.1}
	case *bbox != "":
		var minLat, minLng, maxLat, maxLng float64
		if _, err := fmt.Sscanf(*bbox, "%f,%f,%f,%f", &minLat, &minLng, &maxLat, &maxLng); err != nil {
			fatal(logger, "invalid bbox (expected minLat,minLng,maxLat,maxLng)", err)
		}
		opts.BBox = osmparser.BBox{MinLat: minLat, MaxLat: maxLat, MinLng: minLng, MaxLng: maxLng}
	}
	if !opts.BBox.IsZero() {
		logger.Info("bounding box filter",
			"min_lat", opts.BBox.MinLat, "max_lat", opts.BBox.MaxLat,
			"min_lng", opts.BBox.MinLng, "max_lng", opts.BBox.MaxLng)
	}

	start := time.Now()

	f, err := os.Open(*input)
	if err != nil {
		fatal(logger, "open input", err)
	}
	defer f.Close()

	parseResult, err := osmparser.Parse(context.Background(), f, opts)
	if err != nil {
		fatal(logger, "parse OSM data", err)
	}

	g := graph.Build(parseResult)
	logger.Info("graph built", "nodes", g.NumNodes(), "edges", g.NumEdges())

	if !*keepAll {
		component := graph.LargestComponent(g)
		removed := graph.PruneToComponent(g, component)
		share := 0.0
		if g.NumNodes() > 0 {
			share = float64(len(component)) / float64(g.NumNodes()) * 100
		}
		logger.Info("pruned to largest component",
			"kept", len(component),
			"removed", removed,
			"share_pct", fmt.Sprintf("%.1f", share),
			"edges", g.NumEdges(),
		)
	}

	if err := graph.WriteBinary(*output, g); err != nil {
		fatal(logger, "write binary", err)
	}

	var sizeMB float64
	if info, err := os.Stat(*output); err == nil {
		sizeMB = float64(info.Size()) / (1024 * 1024)
	}
	logger.Info("done",
		"output", *output,
		"size_mb", fmt.Sprintf("%.1f", sizeMB),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "err", err)
	os.Exit(1)
}
