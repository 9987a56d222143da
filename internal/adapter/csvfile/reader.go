package csvfile

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/couchcryptid/accident-data-etl/internal/config"
	"github.com/couchcryptid/accident-data-etl/internal/domain"
	"github.com/go-gota/gota/dataframe"
)

// ctxCheckInterval is how many rows are read between cancellation checks.
const ctxCheckInterval = 1 << 16

// Reader loads the accident dataset from a local CSV file.
// It implements pipeline.Extractor.
type Reader struct {
	path           string
	largeFileBytes int64
	sampleFraction float64
	seed           uint64
	logger         *slog.Logger
}

// NewReader creates a Reader for the configured input path and thresholds.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	return &Reader{
		path:           cfg.InputPath,
		largeFileBytes: cfg.LargeFileBytes,
		sampleFraction: cfg.LargeFileSampleFraction,
		seed:           cfg.SampleSeed,
		logger:         logger,
	}
}

// Extract reads the dataset. Files above the large-file threshold are read
// as domain.SubsetColumns only and down-sampled with a fixed seed; smaller
// files are read whole.
func (r *Reader) Extract(ctx context.Context) (dataframe.DataFrame, error) {
	info, err := os.Stat(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return dataframe.DataFrame{}, fmt.Errorf(
			"%w: %s; download the US Accidents dataset from Kaggle and place it at this path",
			domain.ErrInputNotFound, r.path)
	}
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("stat input: %w", err)
	}

	large := info.Size() > r.largeFileBytes
	r.logger.Info("loading dataset", "path", r.path, "size_bytes", info.Size(), "sampled", large)

	f, err := os.Open(r.path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	var columns []string
	if large {
		columns = domain.SubsetColumns
	}
	header, rows, err := readRecords(ctx, bufio.NewReaderSize(f, 1<<20), columns)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	if large {
		total := len(rows)
		idx := domain.SampleIndices(total, domain.SampleSize(total, r.sampleFraction), r.seed)
		sampled := make([][]string, len(idx))
		for i, j := range idx {
			sampled[i] = rows[j]
		}
		rows = sampled
		r.logger.Info("large dataset sampled", "rows_read", total, "rows_kept", len(rows), "fraction", r.sampleFraction)
	}

	df, err := domain.NewTable(header, rows)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	r.logger.Info("dataset loaded", "rows", df.Nrow(), "columns", df.Ncol())
	return df, nil
}

// readRecords parses CSV from src. When columns is non-nil only those columns
// are kept, in the given order, and each must appear in the header.
func readRecords(ctx context.Context, src io.Reader, columns []string) ([]string, [][]string, error) {
	cr := csv.NewReader(src)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, errors.New("read csv: input has no header")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}
	header = slices.Clone(header)
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	proj, err := projection(header, columns)
	if err != nil {
		return nil, nil, err
	}
	outHeader := header
	if proj != nil {
		outHeader = columns
		// Projected rows copy their cells, so the record slice can be reused.
		cr.ReuseRecord = true
	}

	var rows [][]string
	for n := 0; ; n++ {
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}

		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read csv: %w", err)
		}

		if proj == nil {
			rows = append(rows, rec)
			continue
		}
		// Cells of one record share a single backing string. Cloning keeps
		// dropped columns from staying alive through the kept ones.
		row := make([]string, len(proj))
		for i, j := range proj {
			row[i] = strings.Clone(rec[j])
		}
		rows = append(rows, row)
	}
	return outHeader, rows, nil
}

// projection maps each wanted column to its header index. A nil columns
// slice means keep everything and yields a nil projection.
func projection(header, columns []string) ([]int, error) {
	if columns == nil {
		return nil, nil
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	proj := make([]int, len(columns))
	for i, name := range columns {
		j, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("read csv: %w: %s", domain.ErrMissingColumn, name)
		}
		proj[i] = j
	}
	return proj, nil
}
