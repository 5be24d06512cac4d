// Package evaluate measures the false positive rate of a built filter by
// querying it with candidates known to be absent.
package evaluate

import (
	"context"
	"sync/atomic"

	"github.com/kwertop/bloomset/filters"
	"github.com/kwertop/bloomset/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CheckFunc reports whether the filter under test claims candidate is a member.
type CheckFunc func(ctx context.Context, candidate string) (bool, error)

// Local adapts an in-memory filter.
func Local(f *filters.BloomFilter) CheckFunc {
	return func(_ context.Context, candidate string) (bool, error) {
		return f.Contains(candidate), nil
	}
}

// Remote adapts a Redis backed filter.
func Remote(f *filters.RedisBloomFilter) CheckFunc {
	return f.Contains
}

// Report compares the observed false positive rate with the configured
// rate p and the rate estimated from the filter's fill.
type Report struct {
	Queries        int
	FalsePositives int
	Observed       float64
	Expected       float64
	Estimated      float64
}

// Evaluator runs candidates against a filter on a fixed number of workers.
type Evaluator struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
	workers int
}

// New returns an Evaluator. m may be nil.
func New(logger *zap.Logger, m *metrics.Metrics, workers int) *Evaluator {
	if workers < 1 {
		workers = 1
	}
	return &Evaluator{logger: logger, metrics: m, workers: workers}
}

// Run queries every candidate, all of which must be absent from the filter
// described by params, and counts how many are reported present.
func (e *Evaluator) Run(ctx context.Context, params filters.Params, check CheckFunc, candidates []string) (Report, error) {
	var positives atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	chunk := (len(candidates) + e.workers - 1) / e.workers
	for w := 0; w < e.workers && w*chunk < len(candidates); w++ {
		part := candidates[w*chunk : min((w+1)*chunk, len(candidates))]
		worker := w
		g.Go(func() error {
			var local int64
			for _, c := range part {
				if err := ctx.Err(); err != nil {
					return err
				}
				ok, err := check(ctx, c)
				if err != nil {
					return err
				}
				if ok {
					local++
				}
			}
			positives.Add(local)
			e.logger.Debug("worker done", zap.Int("worker", worker), zap.Int("queries", len(part)), zap.Int64("false_positives", local))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		e.logger.Error("evaluation failed", zap.Error(err))
		return Report{}, err
	}

	report := Report{
		Queries:        len(candidates),
		FalsePositives: int(positives.Load()),
		Expected:       params.P(),
		Estimated:      params.EstimatedFalsePositiveRate(),
	}
	if report.Queries > 0 {
		report.Observed = float64(report.FalsePositives) / float64(report.Queries)
	}
	e.record(report)
	e.logger.Info("evaluation done",
		zap.Int("queries", report.Queries),
		zap.Int("false_positives", report.FalsePositives),
		zap.Float64("observed", report.Observed),
		zap.Float64("expected", report.Expected),
		zap.Float64("estimated", report.Estimated),
	)
	return report, nil
}

func (e *Evaluator) record(report Report) {
	if e.metrics == nil {
		return
	}
	e.metrics.Queries.Add(float64(report.Queries))
	e.metrics.FalsePositives.Add(float64(report.FalsePositives))
	e.metrics.Rate.WithLabelValues("observed").Set(report.Observed)
	e.metrics.Rate.WithLabelValues("expected").Set(report.Expected)
	e.metrics.Rate.WithLabelValues("estimated").Set(report.Estimated)
}
