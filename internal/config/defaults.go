package config

import (
	"os"
	"path/filepath"

	"github.com/zero-day-ai/graphmap/internal/conn"
	"github.com/zero-day-ai/graphmap/internal/loader"
	"github.com/zero-day-ai/graphmap/internal/observability"
	"github.com/zero-day-ai/graphmap/internal/store"
)

// HomeEnv overrides the home directory.
const HomeEnv = "GRAPHMAP_HOME"

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Store: store.DefaultConfig(),
		Conn: ConnConfig{
			ProbeTimeout: conn.DefaultProbeTimeout,
		},
		Logging: observability.DefaultLoggingConfig(),
		Tracing: observability.DefaultTracingConfig(),
		Metrics: observability.DefaultMetricsConfig(),
		Purge: PurgeConfig{
			RequireConfirm: true,
		},
		Loader: LoaderConfig{
			Workers: loader.DefaultWorkers,
		},
	}
}

// DefaultHomeDir returns $GRAPHMAP_HOME, or ~/.graphmap. It falls back to a
// temporary directory if the user home cannot be determined.
func DefaultHomeDir() string {
	if home := os.Getenv(HomeEnv); home != "" {
		return home
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".graphmap")
	}
	return filepath.Join(userHome, ".graphmap")
}

// DefaultConfigPath returns the default config file path for a given home directory
func DefaultConfigPath(homeDir string) string {
	return filepath.Join(homeDir, "config.yaml")
}
