package xlsx

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/couchcryptid/accident-data-etl/internal/domain"
	"github.com/xuri/excelize/v2"
)

// defaultSheet is the sheet excelize creates with every new workbook.
const defaultSheet = "Sheet1"

// Exporter writes every non-empty summary to one sheet of an Excel workbook.
// It implements pipeline.Loader.
type Exporter struct {
	path   string
	logger *slog.Logger
}

// NewExporter creates an Exporter that saves the workbook at path.
func NewExporter(path string, logger *slog.Logger) *Exporter {
	return &Exporter{path: path, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (e *Exporter) Name() string { return "xlsx" }

// Load builds the workbook and saves it, replacing any existing file.
func (e *Exporter) Load(_ context.Context, res domain.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	sheets := 0
	for _, s := range res.Summaries {
		if s.Empty() {
			continue
		}
		if err := addSheet(f, s, sheets == 0); err != nil {
			return err
		}
		sheets++
	}

	if err := os.MkdirAll(filepath.Dir(e.path), 0o755); err != nil {
		return fmt.Errorf("create workbook dir: %w", err)
	}
	if err := f.SaveAs(e.path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}

	e.logger.Info("wrote workbook", "file", e.path, "sheets", sheets)
	return nil
}

// addSheet writes a summary with its header in row 1. The first summary takes
// over the default sheet so the workbook has no blank tab.
func addSheet(f *excelize.File, s domain.Summary, first bool) error {
	if first {
		if err := f.SetSheetName(defaultSheet, s.Name); err != nil {
			return fmt.Errorf("rename sheet %s: %w", s.Name, err)
		}
	} else if _, err := f.NewSheet(s.Name); err != nil {
		return fmt.Errorf("add sheet %s: %w", s.Name, err)
	}

	for i, rec := range domain.Records(s.Frame) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := make([]any, len(rec))
		for j, v := range rec {
			row[j] = cellValue(v, i == 0)
		}
		if err := f.SetSheetRow(s.Name, cell, &row); err != nil {
			return fmt.Errorf("write sheet %s row %d: %w", s.Name, i+1, err)
		}
	}
	return nil
}

// cellValue stores numbers as numbers so spreadsheets can chart them.
func cellValue(v string, header bool) any {
	if header || v == "" {
		return v
	}
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return n
	}
	return v
}
