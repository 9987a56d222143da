package xlsx

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/accident-data-etl/internal/domain"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testResult() domain.Result {
	return domain.Result{
		Summaries: []domain.Summary{
			{
				Name: domain.SummaryState,
				Keys: []string{domain.ColState},
				Frame: dataframe.New(
					series.New([]string{"CA", "OH"}, series.String, domain.ColState),
					series.New([]int{2, 3}, series.Int, domain.ColAccidentCount),
					series.New([]string{"2.5", "2"}, series.String, domain.ColAvgSeverity),
				),
			},
			{Name: domain.SummaryWeather},
			{
				Name: domain.SummaryCity,
				Keys: []string{domain.ColState, domain.ColCity},
				Frame: dataframe.New(
					series.New([]string{"OH"}, series.String, domain.ColState),
					series.New([]string{"Dayton"}, series.String, domain.ColCity),
					series.New([]int{2}, series.Int, domain.ColAccidentCount),
				),
			},
		},
	}
}

func TestExporter_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "summaries.xlsx")
	e := NewExporter(path, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, e.Load(context.Background(), testResult()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	assert.Equal(t, []string{domain.SummaryState, domain.SummaryCity}, f.GetSheetList())

	rows, err := f.GetRows(domain.SummaryState)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"State", "Accident_Count", "Avg_Severity"},
		{"CA", "2", "2.5"},
		{"OH", "3", "2"},
	}, rows)

	cellType, err := f.GetCellType(domain.SummaryState, "B2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, cellType)
	assert.NotEqual(t, excelize.CellTypeInlineString, cellType)
}

func TestExporter_Name(t *testing.T) {
	assert.Equal(t, "xlsx", NewExporter("x.xlsx", slog.Default()).Name())
}

func TestCellValue(t *testing.T) {
	assert.Equal(t, "Accident_Count", cellValue("Accident_Count", true))
	assert.Equal(t, 3.0, cellValue("3", false))
	assert.Equal(t, "Dayton", cellValue("Dayton", false))
	assert.Equal(t, "", cellValue("", false))
}
