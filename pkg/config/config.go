// Package config loads geo_astar server configuration from a TOML file with
// GEO_ASTAR_* environment overrides.
//
// TOML format:
//
//	[server]
//	addr = ":8080"
//	read_timeout = "5s"
//	max_concurrent = 16
//
//	[graph]
//	path = "graph.bin"
//
//	[routing]
//	max_snap_meters = 500.0
//	heuristic = "haversine"
//
//	[log]
//	format = "json"
//	level = "debug"
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds the server configuration.
type Config struct {
	Server  Server  `toml:"server"`
	Graph   Graph   `toml:"graph"`
	Routing Routing `toml:"routing"`
	Log     Log     `toml:"log"`
}

// Server holds HTTP listener settings.
type Server struct {
	Addr           string        `toml:"addr"`
	ReadTimeout    time.Duration `toml:"read_timeout"`
	WriteTimeout   time.Duration `toml:"write_timeout"`
	RequestTimeout time.Duration `toml:"request_timeout"`
	MaxConcurrent  int           `toml:"max_concurrent"`
	CORSOrigin     string        `toml:"cors_origin"`
}

// Graph locates the preprocessed graph file.
type Graph struct {
	Path string `toml:"path"`
}

// Routing holds query settings.
type Routing struct {
	MaxSnapMeters float64 `toml:"max_snap_meters"`
	Heuristic     string  `toml:"heuristic"`
}

// Log selects the logger format and level.
type Log struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: Server{
			Addr:           ":8080",
			ReadTimeout:    5 * time.Second,
			WriteTimeout:   5 * time.Second,
			RequestTimeout: 5 * time.Second,
			MaxConcurrent:  runtime.NumCPU() * 2,
		},
		Graph:   Graph{Path: "graph.bin"},
		Routing: Routing{MaxSnapMeters: 500, Heuristic: "haversine"},
		Log:     Log{Format: "text", Level: "info"},
	}
}

// Load reads path over the defaults (an empty path skips the file), applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("load config file %q: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Addr = getEnv("GEO_ASTAR_ADDR", c.Server.Addr)
	c.Server.MaxConcurrent = getEnvAsInt("GEO_ASTAR_MAX_CONCURRENT", c.Server.MaxConcurrent)
	c.Server.CORSOrigin = getEnv("GEO_ASTAR_CORS_ORIGIN", c.Server.CORSOrigin)
	c.Server.RequestTimeout = getEnvAsDuration("GEO_ASTAR_REQUEST_TIMEOUT", c.Server.RequestTimeout)
	c.Graph.Path = getEnv("GEO_ASTAR_GRAPH", c.Graph.Path)
	c.Routing.MaxSnapMeters = getEnvAsFloat("GEO_ASTAR_MAX_SNAP_METERS", c.Routing.MaxSnapMeters)
	c.Routing.Heuristic = getEnv("GEO_ASTAR_HEURISTIC", c.Routing.Heuristic)
	c.Log.Format = getEnv("GEO_ASTAR_LOG_FORMAT", c.Log.Format)
	c.Log.Level = getEnv("GEO_ASTAR_LOG_LEVEL", c.Log.Level)
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.MaxConcurrent <= 0 {
		errs = append(errs, fmt.Errorf("server.max_concurrent must be positive, got %d", c.Server.MaxConcurrent))
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.request_timeout must be positive, got %s", c.Server.RequestTimeout))
	}
	if c.Graph.Path == "" {
		errs = append(errs, errors.New("graph.path is required"))
	}
	if c.Routing.MaxSnapMeters <= 0 {
		errs = append(errs, fmt.Errorf("routing.max_snap_meters must be positive, got %g", c.Routing.MaxSnapMeters))
	}
	switch c.Routing.Heuristic {
	case "haversine", "geo", "zero", "dijkstra":
	default:
		errs = append(errs, fmt.Errorf("routing.heuristic %q is not usable on geographic graphs", c.Routing.Heuristic))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
