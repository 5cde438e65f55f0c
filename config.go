// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package dlsim

import (
	"bytes"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds the simulation settings.
//
type Config struct {
	// Target simulation speed. 0 runs as fast as possible.
	TicksPerSecond int `yaml:"ticks_per_second"`
	// Number of ticks per clock half period. Defaults to DefaultClockDivisor.
	ClockDivisor int `yaml:"clock_divisor"`
	// Seed of the random streams used for conflict resolution and scheduling.
	// 0 seeds from the current time.
	Seed int64 `yaml:"seed"`
	// A discovery pass with a random swap is forced about once every
	// ReorderInterval ticks. 0 disables it.
	ReorderInterval int `yaml:"reorder_interval"`
	// Minimum delay between two published frames. Defaults to
	// DefaultPublishInterval.
	PublishInterval time.Duration `yaml:"publish_interval"`
	// Capacity of the structural edit queue. Defaults to DefaultEditQueue.
	EditQueue int `yaml:"edit_queue"`
	// Log level name, as understood by logrus.ParseLevel.
	LogLevel string `yaml:"log_level"`

	// Logger receives build and edit diagnostics. Defaults to the logrus
	// standard logger.
	Logger logrus.FieldLogger `yaml:"-"`
	// Rand, if set, returns the random stream with the given name. It replaces
	// the seeded streams.
	Rand func(stream string) *rand.Rand `yaml:"-"`
}

// Default settings.
//
const (
	DefaultTicksPerSecond  = 1000
	DefaultClockDivisor    = 8
	DefaultReorderInterval = 100
	DefaultPublishInterval = 8 * time.Millisecond
	DefaultEditQueue       = 256
)

// DefaultConfig returns the default settings.
//
func DefaultConfig() Config {
	return Config{
		TicksPerSecond:  DefaultTicksPerSecond,
		ClockDivisor:    DefaultClockDivisor,
		ReorderInterval: DefaultReorderInterval,
		PublishInterval: DefaultPublishInterval,
		EditQueue:       DefaultEditQueue,
		LogLevel:        "info",
	}
}

// withDefaults fills the unset fields of cfg that have no meaningful zero
// value. A zero TicksPerSecond or ReorderInterval is kept: it means unthrottled
// or never.
//
func (cfg Config) withDefaults() Config {
	if cfg.ClockDivisor < 1 {
		cfg.ClockDivisor = DefaultClockDivisor
	}
	if cfg.PublishInterval <= 0 {
		cfg.PublishInterval = DefaultPublishInterval
	}
	if cfg.EditQueue < 1 {
		cfg.EditQueue = DefaultEditQueue
	}
	if cfg.TicksPerSecond < 0 {
		cfg.TicksPerSecond = 0
	}
	if cfg.ReorderInterval < 0 {
		cfg.ReorderInterval = 0
	}
	return cfg
}

func (cfg *Config) logger() logrus.FieldLogger {
	if cfg.Logger == nil {
		return logrus.StandardLogger()
	}
	return cfg.Logger
}

// ReadConfig decodes YAML settings from r. Fields missing from the input keep
// their default value.
//
func ReadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return cfg, errors.Wrap(err, "parsing config")
	}
	if cfg.ClockDivisor < 1 {
		return cfg, errors.Errorf("clock_divisor must be positive, got %d", cfg.ClockDivisor)
	}
	if cfg.TicksPerSecond < 0 || cfg.ReorderInterval < 0 || cfg.EditQueue < 0 {
		return cfg, errors.New("ticks_per_second, reorder_interval and edit_queue must not be negative")
	}
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return cfg, errors.Wrap(err, "log_level")
	}
	return cfg, nil
}

// LoadConfig reads YAML settings from a file.
//
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultConfig(), errors.Wrap(err, "reading config")
	}
	return ReadConfig(bytes.NewReader(data))
}
