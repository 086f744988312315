package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

type ExporterType string

const (
	// ConsoleExporter serves for test/dev environment.
	ConsoleExporter ExporterType = "console"
	// PrometheusExporter serves for the product environment, stats are
	// fetched by HTTP.
	PrometheusExporter ExporterType = "prometheus"
	NoopExporter       ExporterType = "none"
)

var ErrUnknownExporter = errors.New("[observability] unknown metrics exporter")

func ParseExporterType(name string) (ExporterType, error) {
	switch typ := ExporterType(strings.ToLower(strings.TrimSpace(name))); typ {
	case ConsoleExporter, PrometheusExporter, NoopExporter:
		return typ, nil
	case "":
		return NoopExporter, nil
	default:
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownExporter, name)
}

// MeterProvider owns the sdk provider and, for prometheus, the registry
// scraped by Handler.
type MeterProvider struct {
	provider *sdkmetric.MeterProvider
	handler  http.Handler
}

func (mp *MeterProvider) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	return mp.provider.Meter(name, opts...)
}

// Handler is nil unless the provider exports to prometheus.
func (mp *MeterProvider) Handler() http.Handler {
	return mp.handler
}

func (mp *MeterProvider) ForceFlush(ctx context.Context) error {
	return mp.provider.ForceFlush(ctx)
}

func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	return mp.provider.Shutdown(ctx)
}

// SetGlobal installs the provider as the otel global one.
func (mp *MeterProvider) SetGlobal() {
	otel.SetMeterProvider(mp.provider)
}

type exporterCfg struct {
	interval time.Duration
	timeout  time.Duration
	writer   io.Writer
	reader   sdkmetric.Reader
}

type ExporterOption func(*exporterCfg)

func WithExportInterval(interval time.Duration) ExporterOption {
	return func(cfg *exporterCfg) {
		if interval > 0 {
			cfg.interval = interval
		}
	}
}

func WithExportTimeout(timeout time.Duration) ExporterOption {
	return func(cfg *exporterCfg) {
		if timeout > 0 {
			cfg.timeout = timeout
		}
	}
}

// WithConsoleWriter redirects the console exporter, stdout by default.
func WithConsoleWriter(w io.Writer) ExporterOption {
	return func(cfg *exporterCfg) {
		if w != nil {
			cfg.writer = w
		}
	}
}

// WithReader attaches an extra reader, tests collect through a manual one.
func WithReader(reader sdkmetric.Reader) ExporterOption {
	return func(cfg *exporterCfg) {
		cfg.reader = reader
	}
}

func NewMeterProvider(typ ExporterType, opts ...ExporterOption) (*MeterProvider, error) {
	cfg := &exporterCfg{
		interval: 10 * time.Second,
		timeout:  5 * time.Second,
		writer:   os.Stdout,
	}
	for _, o := range opts {
		if o != nil {
			o(cfg)
		}
	}

	mp := &MeterProvider{}
	providerOpts := make([]sdkmetric.Option, 0, 2)
	if cfg.reader != nil {
		providerOpts = append(providerOpts, sdkmetric.WithReader(cfg.reader))
	}
	switch typ {
	case ConsoleExporter:
		reader, err := newConsoleMetricsReader(cfg)
		if err != nil {
			return nil, err
		}
		providerOpts = append(providerOpts, sdkmetric.WithReader(reader))
	case PrometheusExporter:
		reader, handler, err := newPrometheusMetricsReader()
		if err != nil {
			return nil, err
		}
		mp.handler = handler
		providerOpts = append(providerOpts, sdkmetric.WithReader(reader))
	case NoopExporter:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownExporter, typ)
	}
	mp.provider = sdkmetric.NewMeterProvider(providerOpts...)
	return mp, nil
}

func newConsoleMetricsReader(cfg *exporterCfg) (sdkmetric.Reader, error) {
	exporter, err := stdoutmetric.New(
		stdoutmetric.WithWriter(cfg.writer),
		stdoutmetric.WithoutTimestamps(),
	)
	if err != nil {
		return nil, fmt.Errorf("create console exporter: %w", err)
	}
	return sdkmetric.NewPeriodicReader(
		exporter,
		sdkmetric.WithInterval(cfg.interval),
		sdkmetric.WithTimeout(cfg.timeout),
	), nil
}

// Each provider gets its own registry to avoid collector conflicts.
func newPrometheusMetricsReader() (sdkmetric.Reader, http.Handler, error) {
	registry := promclient.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
	}
	return exporter, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), nil
}
