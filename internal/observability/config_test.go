package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggingConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LoggingConfig
		wantErr bool
	}{
		{"defaults", DefaultLoggingConfig(), false},
		{"json to file", LoggingConfig{Level: "warn", Format: "json", Output: "/var/log/graphmap.log"}, false},
		{"bad level", LoggingConfig{Level: "verbose", Format: "text", Output: "stderr"}, true},
		{"bad format", LoggingConfig{Level: "info", Format: "xml", Output: "stderr"}, true},
		{"relative path", LoggingConfig{Level: "info", Format: "text", Output: "out.log"}, true},
		{"no output", LoggingConfig{Level: "info", Format: "text"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTracingConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     TracingConfig
		wantErr bool
	}{
		{"disabled", TracingConfig{Provider: "bogus"}, false},
		{"defaults", DefaultTracingConfig(), false},
		{"otlp", TracingConfig{Enabled: true, Provider: "otlp", Endpoint: "localhost:4317", SampleRate: 0.5}, false},
		{"otlp without endpoint", TracingConfig{Enabled: true, Provider: "otlp", SampleRate: 1}, true},
		{"unknown provider", TracingConfig{Enabled: true, Provider: "jaeger", Endpoint: "x"}, true},
		{"sample rate", TracingConfig{Enabled: true, Provider: "noop", SampleRate: 2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
