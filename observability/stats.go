package observability

import (
	"context"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shirou/gopsutil/v3/process"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

func meterName(name string) string {
	builder := &strings.Builder{}
	builder.WriteString("xalgo/")
	if len(strings.TrimSpace(name)) > 0 {
		builder.WriteString(name)
	} else {
		builder.WriteString("default")
	}
	return builder.String()
}

// InitAppStats registers the process level gauges and the otel runtime
// instrumentation against the provider.
func InitAppStats(mp *MeterProvider, name string) error {
	meter := mp.Meter(
		meterName(name),
		metric.WithInstrumentationVersion(otelruntime.Version()),
	)
	_ = lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
		"app.core.goroutines",
		metric.WithDescription(`The application goroutines' info.`),
		metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
			ob.Observe(int64(runtime.NumGoroutine()))
			return nil
		}),
	))
	_ = lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
		"app.core.processes",
		metric.WithDescription(`The application processes' info.`),
		metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
			ob.Observe(int64(runtime.GOMAXPROCS(0)))
			return nil
		}),
	))
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		_ = lo.Must[metric.Int64ObservableGauge](meter.Int64ObservableGauge(
			"app.core.rss",
			metric.WithUnit("By"),
			metric.WithDescription(`The application resident set size.`),
			metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
				mem, err := proc.MemoryInfoWithContext(ctx)
				if err != nil {
					return err
				}
				ob.Observe(int64(mem.RSS))
				return nil
			}),
		))
	}
	return otelruntime.Start(otelruntime.WithMeterProvider(mp.provider))
}

var (
	attrPolicy = attribute.Key("policy")
	attrOp     = attribute.Key("op")
	attrPassed = attribute.Key("passed")
)

// StressStats records the randomized invariant runs. A nil *StressStats
// records nothing.
type StressStats struct {
	operations    metric.Int64Counter
	violations    metric.Int64Counter
	trials        metric.Int64Counter
	trialDuration metric.Float64Histogram
}

func NewStressStats(mp *MeterProvider) *StressStats {
	meter := mp.Meter(meterName("stress"))
	return &StressStats{
		operations: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"stress.operations",
			metric.WithDescription(`Container operations applied by the stress runner.`),
		)),
		violations: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"stress.violations",
			metric.WithDescription(`Invariant violations detected by the stress runner.`),
		)),
		trials: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"stress.trials",
			metric.WithDescription(`Finished stress trials.`),
		)),
		trialDuration: lo.Must[metric.Float64Histogram](meter.Float64Histogram(
			"stress.trial.duration",
			metric.WithUnit("ms"),
			metric.WithDescription(`Wall time of one stress trial.`),
		)),
	}
}

func (stats *StressStats) RecordOperation(ctx context.Context, policy, op string, n int64) {
	if stats == nil || n <= 0 {
		return
	}
	stats.operations.Add(ctx, n, metric.WithAttributes(attrPolicy.String(policy), attrOp.String(op)))
}

func (stats *StressStats) RecordViolations(ctx context.Context, policy string, n int64) {
	if stats == nil || n <= 0 {
		return
	}
	stats.violations.Add(ctx, n, metric.WithAttributes(attrPolicy.String(policy)))
}

func (stats *StressStats) RecordTrial(ctx context.Context, policy string, elapsed time.Duration, passed bool) {
	if stats == nil {
		return
	}
	attrs := metric.WithAttributes(attrPolicy.String(policy), attrPassed.Bool(passed))
	stats.trials.Add(ctx, 1, attrs)
	stats.trialDuration.Record(ctx, float64(elapsed.Microseconds())/1e3, attrs)
}
