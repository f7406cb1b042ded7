// Package config loads tool configuration from file, environment, and
// defaults, and validates it before any container is built.
package config

import (
	"errors"
	"fmt"

	"github.com/snir-david/ESTL/internal/workload"
	"github.com/snir-david/ESTL/pkg/fixedtree"
)

// Config is the top-level configuration struct for the estl tool.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Container ContainerConfig `mapstructure:"container"`
	Soak      SoakConfig      `mapstructure:"soak"`
	Bench     BenchConfig     `mapstructure:"bench"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// ContainerConfig holds the shape of the containers under test.
type ContainerConfig struct {
	Capacity int    `mapstructure:"capacity"`
	Strategy string `mapstructure:"strategy"`
	Shards   int    `mapstructure:"shards"`
}

// SoakConfig holds soak run settings.
type SoakConfig struct {
	Ops         int    `mapstructure:"ops"`
	KeySpace    int    `mapstructure:"key_space"`
	Profile     string `mapstructure:"profile"`
	Seed        int64  `mapstructure:"seed"`
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// BenchConfig holds benchmark run settings.
type BenchConfig struct {
	Ops int `mapstructure:"ops"`
}

// Default values applied before file and environment sources.
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = false

	DefaultContainerCapacity = 1024
	DefaultContainerStrategy = "redblack"
	DefaultContainerShards   = 1

	DefaultSoakOps      = 100000
	DefaultSoakKeySpace = 4096
	DefaultSoakProfile  = "mixed"
	DefaultSoakSeed     = 1

	DefaultBenchOps = 200000
)

// Sentinel errors for configuration validation.
var (
	// ErrInvalidCapacity indicates the container capacity is not positive.
	ErrInvalidCapacity = errors.New("container.capacity must be positive")
	// ErrInvalidShards indicates the shard count is not positive.
	ErrInvalidShards = errors.New("container.shards must be positive")
	// ErrShardsExceedCapacity indicates there are more shards than slots.
	ErrShardsExceedCapacity = errors.New("container.shards must not exceed container.capacity")
	// ErrInvalidSoakOps indicates the soak operation count is not positive.
	ErrInvalidSoakOps = errors.New("soak.ops must be positive")
	// ErrInvalidSoakKeySpace indicates the soak key space is not positive.
	ErrInvalidSoakKeySpace = errors.New("soak.key_space must be positive")
	// ErrInvalidBenchOps indicates the bench operation count is not positive.
	ErrInvalidBenchOps = errors.New("bench.ops must be positive")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	if err := c.validateContainer(); err != nil {
		return err
	}

	if err := c.validateSoak(); err != nil {
		return err
	}

	if c.Bench.Ops < 1 {
		return ErrInvalidBenchOps
	}

	return nil
}

func (c *Config) validateContainer() error {
	if c.Container.Capacity < 1 {
		return ErrInvalidCapacity
	}

	if c.Container.Shards < 1 {
		return ErrInvalidShards
	}

	if c.Container.Shards > c.Container.Capacity {
		return ErrShardsExceedCapacity
	}

	if _, err := fixedtree.ParseStrategy(c.Container.Strategy); err != nil {
		return fmt.Errorf("container.strategy: %w", err)
	}

	return nil
}

func (c *Config) validateSoak() error {
	if c.Soak.Ops < 1 {
		return ErrInvalidSoakOps
	}

	if c.Soak.KeySpace < 1 {
		return ErrInvalidSoakKeySpace
	}

	if _, err := workload.ParseProfile(c.Soak.Profile); err != nil {
		return fmt.Errorf("soak.profile: %w", err)
	}

	return nil
}
