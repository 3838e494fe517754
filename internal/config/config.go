package config

import (
	"time"

	"github.com/zero-day-ai/graphmap/internal/observability"
	"github.com/zero-day-ai/graphmap/internal/store"
)

// Config is the root configuration for graphmap.
type Config struct {
	Store   store.Config                `mapstructure:"store" yaml:"store" validate:"required"`
	Conn    ConnConfig                  `mapstructure:"conn" yaml:"conn"`
	Logging observability.LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Tracing observability.TracingConfig `mapstructure:"tracing" yaml:"tracing"`
	Metrics observability.MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	Purge   PurgeConfig                 `mapstructure:"purge" yaml:"purge"`
	Loader  LoaderConfig                `mapstructure:"loader" yaml:"loader"`
}

// ConnConfig contains connection manager settings.
type ConnConfig struct {
	// ProbeTimeout bounds the liveness probe of the first handle.
	ProbeTimeout time.Duration `mapstructure:"probe_timeout" yaml:"probe_timeout" validate:"min=0"`
}

// PurgeConfig contains purge settings.
type PurgeConfig struct {
	// RequireConfirm makes the purge command refuse to run without --yes.
	RequireConfirm bool `mapstructure:"require_confirm" yaml:"require_confirm"`
}

// LoaderConfig contains seed loader settings.
type LoaderConfig struct {
	// Workers is the number of concurrent loader workers.
	Workers int `mapstructure:"workers" yaml:"workers" validate:"min=1,max=64"`
}
