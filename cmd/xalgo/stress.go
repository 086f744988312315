package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xalgo/lib/xlog"
	"github.com/benz9527/xalgo/observability"
	"github.com/benz9527/xalgo/stress"
)

func newStressCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Run randomized invariant checks against every container",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := stress.LoadConfig(root.configPath, cmd.Flags())
			if err != nil {
				return err
			}
			return runStress(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}
	flags := cmd.Flags()
	flags.Int("trials", 8, "trials per policy")
	flags.Int("operations", 10_000, "operations per trial")
	flags.Int("key-space", 2_048, "keys are drawn from [0, key-space)")
	flags.Int("workers", 4, "worker pool size")
	flags.StringSlice("policies", []string{"avl", "rb", "heap"}, "policies to check: avl, rb, heap")
	flags.Uint64("seed", 0, "run seed, 0 picks a random one")
	flags.Int("validate-every", 256, "validate the invariants every n operations")
	flags.String("metrics", "none", "metrics exporter: none, console, prometheus")
	flags.String("metrics-listen", ":9464", "prometheus scrape address")
	return cmd
}

func newLogger(cfg *stress.Config) xlog.XLogger {
	return xlog.NewXLogger(
		xlog.WithXLoggerLevel(xlog.LogLevel(cfg.Logging.Level)),
		xlog.WithXLoggerEncoder(xlog.ParseLogEncoder(cfg.Logging.Format)),
	)
}

func newMeterProvider(lc fx.Lifecycle, cfg *stress.Config) (*observability.MeterProvider, error) {
	typ, err := observability.ParseExporterType(cfg.Metrics.Exporter)
	if err != nil {
		return nil, err
	}
	mp, err := observability.NewMeterProvider(typ, observability.WithExportInterval(cfg.Metrics.Interval))
	if err != nil {
		return nil, err
	}
	if typ != observability.NoopExporter {
		if err = observability.InitAppStats(mp, "stress"); err != nil {
			return nil, err
		}
	}
	lc.Append(fx.Hook{
		OnStop: mp.Shutdown,
	})
	return mp, nil
}

func newRunner(lc fx.Lifecycle, cfg *stress.Config, logger xlog.XLogger, stats *observability.StressStats) (*stress.Runner, error) {
	runner, err := stress.NewRunner(cfg.Stress, logger, stats)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(runner.Release))
	return runner, nil
}

// registerMetricsServer serves /metrics while the app runs if the
// provider exports to prometheus.
func registerMetricsServer(lc fx.Lifecycle, cfg *stress.Config, mp *observability.MeterProvider, logger xlog.XLogger) {
	if mp.Handler() == nil {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", mp.Handler())
	srv := &http.Server{Addr: cfg.Metrics.Listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			logger.Info("metrics listening", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error(err, "metrics server stopped")
				}
			}()
			return nil
		},
		OnStop: srv.Shutdown,
	})
}

func newStressApp(cfg *stress.Config, populate ...any) *fx.App {
	return fx.New(
		fx.Supply(cfg),
		fx.Provide(
			newLogger,
			newMeterProvider,
			observability.NewStressStats,
			newRunner,
		),
		fx.WithLogger(func(logger xlog.XLogger) fxevent.Logger {
			return xlog.NewFxXLogger(logger)
		}),
		fx.Invoke(registerMetricsServer),
		fx.Populate(populate...),
	)
}

func runStress(ctx context.Context, cfg *stress.Config, out io.Writer) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var (
		runner *stress.Runner
		logger xlog.XLogger
	)
	app := newStressApp(cfg, &runner, &logger)
	if err = app.Err(); err != nil {
		return err
	}
	startCtx, cancel := context.WithTimeout(ctx, app.StartTimeout())
	defer cancel()
	if err = app.Start(startCtx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
		defer cancel()
		err = multierr.Append(err, app.Stop(stopCtx))
		_ = logger.Sync()
	}()

	report, err := runner.Run(ctx)
	if report != nil {
		printReport(out, runner.Seed(), report)
	}
	if err != nil {
		return err
	}
	return report.Err()
}

func printReport(out io.Writer, seed uint64, report *stress.Report) {
	fmt.Fprintf(out, "seed %d\n", seed)
	tbl := table.NewWriter()
	tbl.SetOutputMirror(out)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateColumns = false
	tbl.AppendHeader(table.Row{"policy", "trials", "failed", "operations", "avg trial"})
	groups := lo.GroupBy(report.Results, func(res stress.TrialResult) stress.Policy {
		return res.Policy
	})
	policies := lo.Uniq(lo.Map(report.Results, func(res stress.TrialResult, _ int) stress.Policy {
		return res.Policy
	}))
	for _, policy := range policies {
		results := groups[policy]
		failed := lo.CountBy(results, func(res stress.TrialResult) bool {
			return res.Err != nil
		})
		ops := lo.SumBy(results, func(res stress.TrialResult) int64 {
			return res.Operations
		})
		elapsed := lo.SumBy(results, func(res stress.TrialResult) time.Duration {
			return res.Elapsed
		})
		tbl.AppendRow(table.Row{
			string(policy), len(results), failed, humanize.Comma(ops),
			(elapsed / time.Duration(len(results))).Round(time.Microsecond).String(),
		})
	}
	tbl.AppendFooter(table.Row{
		"total", len(report.Results), report.Failed, humanize.Comma(report.Operations),
		report.Elapsed.Round(time.Millisecond).String(),
	})
	tbl.Render()
}
