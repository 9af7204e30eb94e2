// Package config provides runtime configuration values for the service.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds configuration knobs for HTTP server and workers.
type Config struct {
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout         time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
	InitialWorkerCount      int           `env:"WORKER_COUNT"`
	WorkerMin               int           `env:"WORKER_MIN" envDefault:"3"`
	WorkerMax               int           `env:"WORKER_MAX" envDefault:"8"`
	ScaleInterval           time.Duration `env:"SCALE_INTERVAL" envDefault:"500ms"`
	ScaleUpBacklogPerWorker int           `env:"SCALE_UP_BACKLOG_PER_WORKER" envDefault:"100"`
	ScaleDownIdleTicks      int           `env:"SCALE_DOWN_IDLE_TICKS" envDefault:"6"`
	QueueHighWatermark      int           `env:"QUEUE_HIGH_WATERMARK" envDefault:"5000"`
	QueueBuffer             int           `env:"QUEUE_BUFFER" envDefault:"128"`
	LogLevel                string        `env:"LOG_LEVEL" envDefault:"info"`
}

// Load collects configuration from environment with defaults.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if c.InitialWorkerCount <= 0 {
		c.InitialWorkerCount = c.WorkerMin
	}
	if c.WorkerMin < 1 {
		return Config{}, fmt.Errorf("WORKER_MIN must be >= 1, got %d", c.WorkerMin)
	}
	if c.WorkerMax < c.WorkerMin {
		return Config{}, fmt.Errorf("WORKER_MAX (%d) must be >= WORKER_MIN (%d)", c.WorkerMax, c.WorkerMin)
	}
	if c.ScaleInterval <= 0 {
		return Config{}, fmt.Errorf("SCALE_INTERVAL must be positive")
	}
	return c, nil
}
