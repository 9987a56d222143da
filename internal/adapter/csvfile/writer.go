package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/accident-data-etl/internal/config"
	"github.com/couchcryptid/accident-data-etl/internal/domain"
	"github.com/go-gota/gota/dataframe"
)

// Output file names for the main table.
const (
	SampleFile    = "accidents_sample.csv"
	ProcessedFile = "accidents_processed.csv"
)

// Writer persists pipeline results as CSV files in an output directory.
// It implements pipeline.Loader.
type Writer struct {
	dir        string
	sampleRows int
	seed       uint64
	logger     *slog.Logger
}

// NewWriter creates a Writer for the configured output directory.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	return &Writer{
		dir:        cfg.OutputDir,
		sampleRows: cfg.OutputSampleRows,
		seed:       cfg.SampleSeed,
		logger:     logger,
	}
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "csv" }

// Load writes the main table, sampled down to sampleRows when larger, and
// every non-empty summary as <name>.csv.
func (w *Writer) Load(ctx context.Context, res domain.Result) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	main, file := res.Main, ProcessedFile
	if n := main.Nrow(); n > w.sampleRows {
		main = main.Subset(domain.SampleIndices(n, w.sampleRows, w.seed))
		if main.Err != nil {
			return fmt.Errorf("sample main table: %w", main.Err)
		}
		file = SampleFile
	}
	if err := w.writeFrame(file, main); err != nil {
		return err
	}

	for _, s := range res.Summaries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.Empty() {
			w.logger.Debug("skipping empty summary", "summary", s.Name)
			continue
		}
		if err := w.writeFrame(s.Name+".csv", s.Frame); err != nil {
			return err
		}
	}

	w.logger.Info("processed data saved", "dir", w.dir)
	return nil
}

func (w *Writer) writeFrame(name string, df dataframe.DataFrame) error {
	path := filepath.Join(w.dir, name)
	if err := WriteFile(path, domain.Records(df)); err != nil {
		return err
	}
	w.logger.Info("wrote csv", "file", path, "rows", df.Nrow())
	return nil
}

// WriteFile writes records to path, replacing any existing file.
func WriteFile(path string, records [][]string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	cw := csv.NewWriter(f)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadFile reads every record of the CSV file at path, header included.
func ReadFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return records, nil
}
