package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/zero-day-ai/graphmap/internal/types"
)

// Driver selects a Store implementation.
type Driver string

const (
	// DriverREST talks to the Neo4j REST API over HTTP.
	DriverREST Driver = "rest"
	// DriverBolt talks Bolt through the official Neo4j driver.
	DriverBolt Driver = "bolt"
	// DriverMemory keeps the graph in process.
	DriverMemory Driver = "memory"
)

// Config contains connection options for a graph store.
type Config struct {
	// Driver is one of rest, bolt, memory.
	Driver Driver `yaml:"driver" mapstructure:"driver" validate:"required,oneof=rest bolt memory"`

	// URL is the store endpoint.
	// For the REST driver, the service root, e.g. "http://localhost:7474/db/data".
	// For the Bolt driver, e.g. "bolt://localhost:7687" or "neo4j+s://host".
	URL string `yaml:"url" mapstructure:"url" validate:"required_unless=Driver memory"`

	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`

	// Database name (Bolt only). Empty uses the server default.
	Database string `yaml:"database" mapstructure:"database"`

	// Timeout bounds a single request.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"min=0"`

	// RateLimit caps requests per second per handle (REST only). Zero disables it.
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit" validate:"min=0"`
	Burst     int     `yaml:"burst" mapstructure:"burst" validate:"min=0"`

	// MaxPoolSize limits the Bolt connection pool. Zero uses the driver default.
	MaxPoolSize int `yaml:"max_pool_size" mapstructure:"max_pool_size" validate:"min=0"`
}

// DefaultConfig returns a Config pointing at a local Neo4j REST endpoint.
func DefaultConfig() Config {
	return Config{
		Driver:      DriverREST,
		URL:         "http://localhost:7474/db/data",
		Username:    "neo4j",
		Timeout:     30 * time.Second,
		Burst:       1,
		MaxPoolSize: 50,
	}
}

// Validate checks the fields every driver depends on.
func (c Config) Validate() error {
	switch c.Driver {
	case DriverREST, DriverBolt:
		if c.URL == "" {
			return types.NewError(ErrCodeStoreInvalidConfig, "url cannot be empty")
		}
	case DriverMemory:
	default:
		return types.NewError(ErrCodeStoreInvalidConfig, fmt.Sprintf("unknown driver %q", c.Driver))
	}
	if c.Timeout < 0 {
		return types.NewError(ErrCodeStoreInvalidConfig, "timeout cannot be negative")
	}
	if c.RateLimit < 0 {
		return types.NewError(ErrCodeStoreInvalidConfig, "rate_limit cannot be negative")
	}
	return nil
}

// Open builds a Store for cfg.Driver. It does not contact the store; the
// connection manager probes liveness.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Driver {
	case DriverREST:
		s, err := NewRESTStore(cfg, WithRESTLogger(logger))
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverBolt:
		s, err := NewBoltStore(cfg, WithBoltLogger(logger))
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return processMemory().Connect(), nil
	}
}

// processMemory is the graph shared by every memory-driver handle opened
// through Open in this process.
var processMemory = sync.OnceValue(NewMemoryStore)
