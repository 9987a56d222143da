package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/accident-data-etl/internal/domain"
	"github.com/couchcryptid/accident-data-etl/internal/observability"
	"github.com/go-gota/gota/dataframe"
	"github.com/jonboulle/clockwork"
)

// Extractor reads the raw accident table from the source.
type Extractor interface {
	Extract(ctx context.Context) (dataframe.DataFrame, error)
}

// Transformer derives the enriched table from the raw one.
type Transformer interface {
	Transform(ctx context.Context, df dataframe.DataFrame) (dataframe.DataFrame, error)
}

// Loader writes a finished result to one destination.
type Loader interface {
	Name() string
	Load(ctx context.Context, res domain.Result) error
}

// Pipeline runs the extract, transform, aggregate and load stages once.
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	loaders     []Loader
	logger      *slog.Logger
	metrics     *observability.Metrics
	clock       clockwork.Clock
	topCities   int
}

// New creates a Pipeline with the given stages and observability. Loaders
// run in order; the first failure stops the run.
func New(e Extractor, t Transformer, loaders []Loader, logger *slog.Logger, metrics *observability.Metrics, topCities int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loaders:     loaders,
		logger:      logger,
		metrics:     metrics,
		clock:       clockwork.NewRealClock(),
		topCities:   topCities,
	}
}

// WithClock swaps the time source used for stage timing and result
// timestamps.
func (p *Pipeline) WithClock(c clockwork.Clock) *Pipeline {
	p.clock = c
	return p
}

// Run executes every stage and returns the first error, wrapped with the
// name of the failing stage.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "loaders", len(p.loaders))

	res, err := p.run(ctx)

	p.metrics.LastRunTimestamp.Set(float64(p.clock.Now().Unix()))
	if err != nil {
		p.metrics.LastRunSuccess.Set(0)
		p.logger.Error("pipeline failed", "error", err)
		return err
	}
	p.metrics.LastRunSuccess.Set(1)
	p.logger.Info("pipeline finished", "rows", res.Main.Nrow(), "summaries", len(res.Summaries))
	return nil
}

func (p *Pipeline) run(ctx context.Context) (domain.Result, error) {
	var (
		raw      dataframe.DataFrame
		enriched dataframe.DataFrame
		res      domain.Result
	)

	err := p.stage(ctx, "extract", func() error {
		var err error
		raw, err = p.extractor.Extract(ctx)
		if err != nil {
			return err
		}
		p.metrics.RowsLoaded.Add(float64(raw.Nrow()))
		return nil
	})
	if err != nil {
		return res, err
	}

	err = p.stage(ctx, "transform", func() error {
		var err error
		enriched, err = p.transformer.Transform(ctx, raw)
		return err
	})
	if err != nil {
		return res, err
	}

	err = p.stage(ctx, "aggregate", func() error {
		summaries, err := domain.Aggregate(enriched, p.topCities)
		if err != nil {
			return err
		}
		for _, s := range summaries {
			p.metrics.SummaryRows.WithLabelValues(s.Name).Set(float64(s.Frame.Nrow()))
		}
		res = domain.Result{Main: enriched, Summaries: summaries, GeneratedAt: p.clock.Now().UTC()}
		return nil
	})
	if err != nil {
		return res, err
	}

	for _, l := range p.loaders {
		if err := p.stage(ctx, "load:"+l.Name(), func() error {
			return l.Load(ctx, res)
		}); err != nil {
			return res, err
		}
	}
	return res, nil
}

// stage runs fn unless ctx is already done, records its duration, and wraps
// any error with the stage name.
func (p *Pipeline) stage(ctx context.Context, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	start := p.clock.Now()
	err := fn()
	elapsed := p.clock.Since(start)
	p.metrics.StageDuration.WithLabelValues(name).Observe(elapsed.Seconds())

	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	p.logger.Info("stage finished", "stage", name, "duration", elapsed)
	return nil
}
