package observability

import (
	"fmt"
	"strings"
)

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" mapstructure:"format" validate:"omitempty,oneof=json text"`
	Output string `yaml:"output" mapstructure:"output"`
}

// DefaultLoggingConfig logs text at info level to stderr.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:  "info",
		Format: "text",
		Output: "stderr",
	}
}

// Validate validates the LoggingConfig fields.
// Level must be debug, info, warn or error; Format json or text; Output
// stdout, stderr or an absolute file path.
func (c *LoggingConfig) Validate() error {
	if _, err := ParseLevel(c.Level); err != nil {
		return err
	}

	switch strings.ToLower(c.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s (must be one of: json, text)", c.Format)
	}

	if c.Output == "" {
		return fmt.Errorf("output is required")
	}
	output := strings.ToLower(c.Output)
	if output != "stdout" && output != "stderr" && !strings.HasPrefix(c.Output, "/") {
		return fmt.Errorf("invalid log output: %s (must be 'stdout', 'stderr', or an absolute file path)", c.Output)
	}
	return nil
}

// TracingConfig contains OpenTelemetry tracing configuration.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled" mapstructure:"enabled"`
	Provider    string  `yaml:"provider" mapstructure:"provider"`
	Endpoint    string  `yaml:"endpoint" mapstructure:"endpoint"`
	ServiceName string  `yaml:"service_name" mapstructure:"service_name"`
	SampleRate  float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"min=0,max=1"`
	// CAFile verifies the collector's certificate. Empty uses system roots.
	CAFile       string `yaml:"ca_file" mapstructure:"ca_file"`
	InsecureMode bool   `yaml:"insecure_mode" mapstructure:"insecure_mode"`
}

// DefaultTracingConfig returns a disabled tracing configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		Provider:    "noop",
		ServiceName: defaultServiceName,
		SampleRate:  1.0,
	}
}

// Validate validates the TracingConfig fields. Disabled tracing is always valid.
func (c *TracingConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	provider := strings.ToLower(c.Provider)
	if provider != "otlp" && provider != "noop" {
		return fmt.Errorf("invalid tracing provider: %s (must be one of: otlp, noop)", c.Provider)
	}
	if c.SampleRate < 0.0 || c.SampleRate > 1.0 {
		return fmt.Errorf("invalid sample rate: %f (must be between 0.0 and 1.0)", c.SampleRate)
	}
	if provider == "otlp" && c.Endpoint == "" {
		return fmt.Errorf("endpoint is required when tracing is enabled")
	}
	return nil
}
