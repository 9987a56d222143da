package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/accident-data-etl/internal/domain"
	"github.com/couchcryptid/accident-data-etl/internal/observability"
	"github.com/couchcryptid/accident-data-etl/internal/pipeline"
	"github.com/go-gota/gota/dataframe"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockExtractor struct {
	df    dataframe.DataFrame
	err   error
	clock *clockwork.FakeClock
	took  time.Duration
}

func (m *mockExtractor) Extract(_ context.Context) (dataframe.DataFrame, error) {
	if m.clock != nil {
		m.clock.Advance(m.took)
	}
	return m.df, m.err
}

type mockLoader struct {
	name   string
	err    error
	calls  int
	loaded domain.Result
}

func (m *mockLoader) Name() string { return m.name }

func (m *mockLoader) Load(_ context.Context, res domain.Result) error {
	m.calls++
	m.loaded = res
	return m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sourceTable(t *testing.T) dataframe.DataFrame {
	t.Helper()

	header := []string{domain.ColID, domain.ColSeverity, domain.ColStartTime, domain.ColEndTime, domain.ColState, domain.ColCity, domain.ColWeatherCondition}
	rows := [][]string{
		{"A-1", "2", "2016-02-08 05:46:00", "2016-02-08 11:00:00", "OH", "Dayton", "Light Rain"},
		{"A-2", "", "2016-02-13 17:30:00", "2016-02-13 18:00:00", "OH", "Columbus", "Clear"},
		{"A-3", "3", "2016-02-14 23:15:00", "2016-02-15 00:15:00", "CA", "Fresno", "Heavy Snow"},
	}
	df, err := domain.NewTable(header, rows)
	require.NoError(t, err)
	return df
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2024, time.April, 26, 15, 10, 0, 0, time.UTC))
	ext := &mockExtractor{df: sourceTable(t)}
	csv := &mockLoader{name: "csv"}
	xlsx := &mockLoader{name: "xlsx"}
	metrics := observability.NewMetrics()

	p := pipeline.New(ext, pipeline.NewTransformer(discardLogger()), []pipeline.Loader{csv, xlsx}, discardLogger(), metrics, domain.DefaultTopCities).
		WithClock(fakeClock)

	require.NoError(t, p.Run(context.Background()))

	assert.Equal(t, 1, csv.calls)
	assert.Equal(t, 1, xlsx.calls)
	assert.Equal(t, 3, csv.loaded.Main.Nrow())
	assert.True(t, domain.HasColumn(csv.loaded.Main, domain.ColWeatherCategory))
	assert.Len(t, csv.loaded.Summaries, 6)
	assert.Equal(t, fakeClock.Now(), csv.loaded.GeneratedAt)

	assert.InDelta(t, 3, testutil.ToFloat64(metrics.RowsLoaded), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.SummaryRows.WithLabelValues(domain.SummaryState)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.LastRunSuccess), 0)
	assert.InDelta(t, float64(fakeClock.Now().Unix()), testutil.ToFloat64(metrics.LastRunTimestamp), 0)
	assert.Equal(t, 5, testutil.CollectAndCount(metrics.StageDuration))
}

func TestPipeline_Run_ExtractErrorStopsRun(t *testing.T) {
	ext := &mockExtractor{err: domain.ErrInputNotFound}
	ldr := &mockLoader{name: "csv"}
	metrics := observability.NewMetrics()
	metrics.LastRunSuccess.Set(1)

	p := pipeline.New(ext, pipeline.NewTransformer(discardLogger()), []pipeline.Loader{ldr}, discardLogger(), metrics, domain.DefaultTopCities)

	err := p.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrInputNotFound)
	assert.Contains(t, err.Error(), "extract:")
	assert.Equal(t, 0, ldr.calls)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.LastRunSuccess), 0)
}

func TestPipeline_Run_TransformError(t *testing.T) {
	df, err := domain.NewTable([]string{domain.ColID}, [][]string{{"A-1"}})
	require.NoError(t, err)
	ldr := &mockLoader{name: "csv"}

	p := pipeline.New(&mockExtractor{df: df}, pipeline.NewTransformer(discardLogger()), []pipeline.Loader{ldr}, discardLogger(), observability.NewMetrics(), domain.DefaultTopCities)

	err = p.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrMissingColumn)
	assert.Contains(t, err.Error(), "transform:")
	assert.Equal(t, 0, ldr.calls)
}

func TestPipeline_Run_LoaderErrorStopsLaterLoaders(t *testing.T) {
	first := &mockLoader{name: "csv", err: errors.New("disk full")}
	second := &mockLoader{name: "kafka"}

	p := pipeline.New(&mockExtractor{df: sourceTable(t)}, pipeline.NewTransformer(discardLogger()), []pipeline.Loader{first, second}, discardLogger(), observability.NewMetrics(), domain.DefaultTopCities)

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, "load:csv: disk full", err.Error())
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls)
}

func TestPipeline_Run_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ldr := &mockLoader{name: "csv"}

	p := pipeline.New(&mockExtractor{df: sourceTable(t)}, pipeline.NewTransformer(discardLogger()), []pipeline.Loader{ldr}, discardLogger(), observability.NewMetrics(), domain.DefaultTopCities)

	err := p.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, ldr.calls)
}

func TestPipeline_Run_RecordsStageDuration(t *testing.T) {
	fakeClock := clockwork.NewFakeClock()
	ext := &mockExtractor{df: sourceTable(t), clock: fakeClock, took: 90 * time.Second}
	metrics := observability.NewMetrics()

	p := pipeline.New(ext, pipeline.NewTransformer(discardLogger()), nil, discardLogger(), metrics, domain.DefaultTopCities).
		WithClock(fakeClock)
	require.NoError(t, p.Run(context.Background()))

	var sum float64
	var count uint64
	families, err := metrics.Registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "accident_etl_stage_duration_seconds" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "stage" && l.GetValue() == "extract" {
					sum = m.GetHistogram().GetSampleSum()
					count = m.GetHistogram().GetSampleCount()
				}
			}
		}
	}
	assert.InDelta(t, 90, sum, 0)
	assert.Equal(t, uint64(1), count)
}
