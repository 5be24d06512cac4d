// Command bloomcheck builds a Bloom filter from a word list and measures its
// false positive rate against words known to be absent.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/kwertop/bloomset"
	"github.com/kwertop/bloomset/filters"
	"github.com/kwertop/bloomset/hash"
	"github.com/kwertop/bloomset/internal/config"
	"github.com/kwertop/bloomset/internal/evaluate"
	"github.com/kwertop/bloomset/internal/logging"
	"github.com/kwertop/bloomset/internal/metrics"
	"github.com/kwertop/bloomset/internal/wordlist"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	cfg, err := config.Load(config.NewFlagSet("bloomcheck"), args)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	err = check(ctx, cfg, logger, stdout)
	if err != nil {
		logger.Error("bloomcheck failed", zap.Error(err))
	}
	return err
}

// target is the filter under test, whichever backend holds it.
type target struct {
	params    filters.Params
	check     evaluate.CheckFunc
	fillRatio float64
	cleanup   func()
}

func check(ctx context.Context, cfg *config.Config, logger *zap.Logger, stdout io.Writer) error {
	words, err := wordlist.ReadFile(cfg.Words)
	if err != nil {
		return err
	}
	capacity := cfg.Filter.Capacity
	if capacity == 0 {
		capacity = uint(len(words))
	}
	family, err := hash.ByName(cfg.Filter.Hash)
	if err != nil {
		return err
	}
	m := metrics.New("bloomcheck")

	start := time.Now()
	t, err := build(ctx, cfg, words, capacity, family)
	if err != nil {
		return err
	}
	defer t.cleanup()
	m.ObserveBuild(cfg.Filter.Backend, start)
	m.Members.Set(float64(t.params.Count()))
	m.FilterBits.Set(float64(t.params.M()))
	m.FilterHashes.Set(float64(t.params.K()))
	m.FillRatio.Set(t.fillRatio)
	logger.Info("filter built",
		zap.String("backend", cfg.Filter.Backend),
		zap.String("hash", family.Name()),
		zap.Uint("members", t.params.Count()),
		zap.Uint("n", t.params.N()),
		zap.Float64("p", t.params.P()),
		zap.Uint("m", t.params.M()),
		zap.Uint("k", t.params.K()),
		zap.Float64("fill_ratio", t.fillRatio),
		zap.Duration("took", time.Since(start)),
	)

	var candidates []string
	switch cfg.Evaluate.Mode {
	case "random":
		candidates, err = evaluate.Random(words, cfg.Evaluate.Samples, cfg.Evaluate.Length, cfg.Evaluate.Seed)
		if err != nil {
			return err
		}
	default:
		candidates = evaluate.Reversed(words)
	}

	report, err := evaluate.New(logger, m, cfg.Evaluate.Workers).Run(ctx, t.params, t.check, candidates)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "False positives: %d out of %d\n", report.FalsePositives, report.Queries)
	fmt.Fprintf(stdout, "Expected probability: %v\n", report.Expected)
	fmt.Fprintf(stdout, "Actual probability: %.7f\n", report.Observed)

	if cfg.Metrics.Textfile != "" {
		if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			return fmt.Errorf("bloomset: writing metrics: %w", err)
		}
		logger.Info("metrics written", zap.String("path", cfg.Metrics.Textfile))
	}
	return nil
}

func build(ctx context.Context, cfg *config.Config, words []string, capacity uint, family hash.Family) (*target, error) {
	if cfg.Filter.Backend != "redis" {
		filter, err := filters.Build(words, capacity, cfg.Filter.FalsePositiveRate, filters.WithHashFamily(family))
		if err != nil {
			return nil, err
		}
		return &target{
			params:    filter,
			check:     evaluate.Local(filter),
			fillRatio: filter.FillRatio(),
			cleanup:   func() {},
		}, nil
	}

	options, err := bloomset.ParseRedisURI(cfg.Redis.URI)
	if err != nil {
		return nil, err
	}
	client := bloomset.NewRedisClient(*options)
	filter, err := filters.BuildRedis(ctx, client, cfg.Redis.Key, words, capacity, cfg.Filter.FalsePositiveRate, filters.WithHashFamily(family))
	if err != nil {
		client.Close()
		return nil, err
	}
	fillRatio, err := filter.FillRatio(ctx)
	if err != nil {
		client.Close()
		return nil, err
	}
	return &target{
		params:    filter,
		check:     evaluate.Remote(filter),
		fillRatio: fillRatio,
		cleanup: func() {
			if !cfg.Redis.Keep {
				_ = filter.Drop(context.Background())
			}
			client.Close()
		},
	}, nil
}
