package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/accident-data-etl/internal/domain"
	"github.com/go-gota/gota/dataframe"
)

// AccidentTransformer implements Transformer using the domain enrichment.
type AccidentTransformer struct {
	logger *slog.Logger
}

// NewTransformer creates an AccidentTransformer.
func NewTransformer(logger *slog.Logger) *AccidentTransformer {
	return &AccidentTransformer{logger: logger}
}

func (t *AccidentTransformer) Transform(_ context.Context, df dataframe.DataFrame) (dataframe.DataFrame, error) {
	out, err := domain.Enrich(df)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	t.logger.Debug("table enriched", "rows", out.Nrow(), "columns", out.Ncol())
	return out, nil
}
