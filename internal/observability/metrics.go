package observability

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc/credentials"

	"github.com/zero-day-ai/graphmap/internal/version"
)

const defaultMetricsInterval = 15 * time.Second

// MetricsConfig contains OpenTelemetry metrics configuration.
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Provider string `yaml:"provider" mapstructure:"provider"`
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// Interval between pushes to the collector. The provider also flushes
	// on shutdown.
	Interval     time.Duration `yaml:"interval" mapstructure:"interval" validate:"min=0"`
	CAFile       string        `yaml:"ca_file" mapstructure:"ca_file"`
	InsecureMode bool          `yaml:"insecure_mode" mapstructure:"insecure_mode"`
}

// DefaultMetricsConfig returns a disabled metrics configuration.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Provider: "noop",
		Interval: defaultMetricsInterval,
	}
}

// Validate validates the MetricsConfig fields. Disabled metrics are always valid.
func (c *MetricsConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	provider := strings.ToLower(c.Provider)
	if provider != "otlp" && provider != "noop" {
		return fmt.Errorf("invalid metrics provider: %s (must be one of: otlp, noop)", c.Provider)
	}
	if provider == "otlp" && c.Endpoint == "" {
		return fmt.Errorf("endpoint is required when metrics are enabled")
	}
	if c.Interval < 0 {
		return fmt.Errorf("invalid metrics interval: %s", c.Interval)
	}
	return nil
}

// InitMetrics builds a meter provider from cfg and installs it as the
// global provider. Disabled metrics and the "noop" provider yield a
// provider without readers, whose instruments record nothing.
//
// Example:
//
//	mp, err := observability.InitMetrics(ctx, cfg.Metrics)
//	if err != nil {
//	    return err
//	}
//	defer mp.Shutdown(ctx)
func InitMetrics(ctx context.Context, cfg MetricsConfig) (*sdkmetric.MeterProvider, error) {
	if !cfg.Enabled || strings.ToLower(cfg.Provider) == "noop" {
		mp := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(mp)
		return mp, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid metrics config: %w", err)
	}

	res, err := resource.New(
		ctx,
		resource.WithAttributes(
			semconv.ServiceName(defaultServiceName),
			semconv.ServiceVersion(version.Version),
		),
		resource.WithFromEnv(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.Endpoint)}
	switch {
	case cfg.InsecureMode:
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	case cfg.CAFile != "":
		creds, err := credentials.NewClientTLSFromFile(cfg.CAFile, "")
		if err != nil {
			return nil, fmt.Errorf("failed to load TLS credentials: %w", err)
		}
		opts = append(opts, otlpmetricgrpc.WithTLSCredentials(creds))
	}

	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create otlp metric exporter for %s: %w", cfg.Endpoint, err)
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultMetricsInterval
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)
	return mp, nil
}

// ShutdownMetrics flushes and stops mp. A nil provider is ignored.
func ShutdownMetrics(ctx context.Context, mp *sdkmetric.MeterProvider) error {
	if mp == nil {
		return nil
	}
	if err := mp.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	return nil
}
