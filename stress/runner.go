package stress

import (
	"context"
	"errors"
	"fmt"
	randv2 "math/rand/v2"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xalgo/lib/xlog"
	"github.com/benz9527/xalgo/observability"
)

var ErrTrialPanic = errors.New("stress trial panicked")

// TrialResult is the outcome of one randomized run against one policy.
type TrialResult struct {
	Err        error
	Policy     Policy
	Trial      int
	Seed       uint64
	Operations int64
	FinalSize  int64
	Elapsed    time.Duration
}

type Report struct {
	Results    []TrialResult
	Operations int64
	Failed     int
	Elapsed    time.Duration
}

// Err combines the failures of every trial, nil if all of them passed.
func (r *Report) Err() error {
	var merr error
	for _, res := range r.Results {
		if res.Err != nil {
			merr = multierr.Append(merr, fmt.Errorf("%s trial %d (seed %d): %w", res.Policy, res.Trial, res.Seed, res.Err))
		}
	}
	return merr
}

type Runner struct {
	cfg    StressConfig
	logger xlog.XLogger
	stats  *observability.StressStats
	pool   *ants.Pool
}

// NewRunner builds the worker pool. The stats may be nil.
func NewRunner(cfg StressConfig, logger xlog.XLogger, stats *observability.StressStats) (*Runner, error) {
	if err := validateConfig(&Config{
		Stress:  cfg,
		Metrics: MetricsConfig{Exporter: string(observability.NoopExporter), Interval: time.Second},
	}); err != nil {
		return nil, err
	}
	if logger == nil {
		return nil, errors.New("nil stress logger")
	}
	if cfg.Seed == 0 {
		cfg.Seed = randv2.Uint64()
	}
	pool, err := ants.NewPool(
		cfg.Workers,
		ants.WithLogger(xlog.NewAntsXLogger(logger)),
		ants.WithPreAlloc(true),
	)
	if err != nil {
		return nil, fmt.Errorf("create stress worker pool: %w", err)
	}
	return &Runner{
		cfg:    cfg,
		logger: logger.Named("stress"),
		stats:  stats,
		pool:   pool,
	}, nil
}

func (r *Runner) Seed() uint64 {
	return r.cfg.Seed
}

func (r *Runner) Release() {
	r.pool.Release()
}

// Run executes trials × policies tasks on the pool and waits for all of
// them. Cancelling ctx stops the trials between two operations.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	policies := r.cfg.policies()
	results := make([]TrialResult, len(policies)*r.cfg.Trials)
	start := time.Now()
	r.logger.Info("stress started",
		zap.Strings("policies", r.cfg.Policies),
		zap.Int("trials", r.cfg.Trials),
		zap.Int("operations", r.cfg.Operations),
		zap.Int("workers", r.cfg.Workers),
		zap.Uint64("seed", r.cfg.Seed),
	)

	wg := sync.WaitGroup{}
	var submitErr error
	for pi, policy := range policies {
		for trial := 0; trial < r.cfg.Trials; trial++ {
			idx := pi*r.cfg.Trials + trial
			// Every trial owns a deterministic stream derived from the run seed.
			seed := r.cfg.Seed ^ (uint64(idx+1) * 0x9e3779b97f4a7c15)
			results[idx] = TrialResult{Policy: policy, Trial: trial, Seed: seed}
			wg.Add(1)
			err := r.pool.Submit(func() {
				defer wg.Done()
				results[idx] = r.runTrial(ctx, policy, trial, seed)
			})
			if err != nil {
				wg.Done()
				results[idx].Err = err
				submitErr = multierr.Append(submitErr, err)
			}
		}
	}
	wg.Wait()

	report := &Report{
		Results: results,
		Elapsed: time.Since(start),
	}
	for _, res := range results {
		report.Operations += res.Operations
		if res.Err != nil {
			report.Failed++
		}
	}
	r.logger.Info("stress finished",
		zap.String("operations", humanize.Comma(report.Operations)),
		zap.Int("failed", report.Failed),
		zap.String("elapsed", report.Elapsed.String()),
	)
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, submitErr
}

func (r *Runner) runTrial(ctx context.Context, policy Policy, trial int, seed uint64) (res TrialResult) {
	res = TrialResult{Policy: policy, Trial: trial, Seed: seed}
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			res.Err = multierr.Append(res.Err, fmt.Errorf("%w: %v", ErrTrialPanic, p))
		}
		res.Elapsed = time.Since(start)
		r.stats.RecordTrial(ctx, string(policy), res.Elapsed, res.Err == nil)
		if res.Err != nil {
			r.stats.RecordViolations(ctx, string(policy), int64(len(multierr.Errors(res.Err))))
			r.logger.Error(res.Err, "stress trial failed",
				zap.String("policy", string(policy)),
				zap.Int("trial", trial),
				zap.Uint64("seed", seed),
			)
			return
		}
		r.logger.Debug("stress trial passed",
			zap.String("policy", string(policy)),
			zap.Int("trial", trial),
			zap.String("operations", humanize.Comma(res.Operations)),
			zap.Int64("size", res.FinalSize),
			zap.String("elapsed", res.Elapsed.String()),
		)
	}()

	rnd := randv2.New(randv2.NewPCG(seed, uint64(trial)))
	var c checker
	switch policy {
	case PolicyAVL, PolicyRB:
		c = newTreeChecker(policy, r.cfg, rnd)
	case PolicyHeap:
		c = newHeapChecker(r.cfg, rnd)
	default:
		res.Err = fmt.Errorf("%w: %s", ErrUnknownPolicy, policy)
		return res
	}
	res.Err = c.run(ctx)
	res.Operations = c.operations()
	res.FinalSize = c.size()
	for op, n := range c.counts() {
		r.stats.RecordOperation(ctx, string(policy), op, n)
	}
	return res
}
