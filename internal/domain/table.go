package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// naToken is how gota marks a missing element in string form.
const naToken = "NaN"

// naValues are the cell spellings that load as missing. The set matches the
// default missing-value tokens of common dataframe readers.
var naValues = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// IsNAValue reports whether a raw CSV cell denotes a missing value.
func IsNAValue(cell string) bool {
	_, ok := naValues[cell]
	return ok
}

// NewTable builds a string-typed table from a header and row-major records.
// Every row must have exactly len(header) cells.
func NewTable(header []string, rows [][]string) (dataframe.DataFrame, error) {
	columns := make([]series.Series, len(header))
	for j, name := range header {
		values := make([]string, len(rows))
		for i, row := range rows {
			if len(row) != len(header) {
				return dataframe.DataFrame{}, fmt.Errorf("row %d: expected %d fields, got %d", i+1, len(header), len(row))
			}
			cell := row[j]
			if IsNAValue(cell) {
				cell = naToken
			}
			values[i] = cell
		}
		columns[j] = series.New(values, series.String, name)
	}

	df := dataframe.New(columns...)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("build table: %w", df.Err)
	}
	return df, nil
}

// HasColumn reports whether df has a column with the given name.
func HasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Records returns df as CSV records, header first, with missing cells blank.
func Records(df dataframe.DataFrame) [][]string {
	records := df.Records()
	if len(records) < 2 {
		return records
	}
	for _, rec := range records[1:] {
		for j, v := range rec {
			if v == naToken {
				rec[j] = ""
			}
		}
	}
	return records
}

// numericColumn parses a string series into floats, NaN for missing elements.
func numericColumn(s series.Series) ([]float64, error) {
	out := make([]float64, s.Len())
	for i := range out {
		e := s.Elem(i)
		if e.IsNA() {
			out[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(e.String()), 64)
		if err != nil {
			return nil, fmt.Errorf("column %s row %d: %q is not a number", s.Name, i+1, e.String())
		}
		out[i] = v
	}
	return out, nil
}

// intValues returns the ints of an int series and which elements are present.
func intValues(s series.Series) ([]int, []bool) {
	vals := make([]int, s.Len())
	ok := make([]bool, s.Len())
	for i := range vals {
		e := s.Elem(i)
		if e.IsNA() {
			continue
		}
		v, err := e.Int()
		if err != nil {
			continue
		}
		vals[i], ok[i] = v, true
	}
	return vals, ok
}

// stringValues returns the strings of a series and which elements are present.
func stringValues(s series.Series) ([]string, []bool) {
	vals := make([]string, s.Len())
	ok := make([]bool, s.Len())
	for i := range vals {
		e := s.Elem(i)
		if e.IsNA() {
			continue
		}
		vals[i], ok[i] = e.String(), true
	}
	return vals, ok
}

// intSeries builds an int series, marking absent positions as missing.
func intSeries(name string, vals []int, ok []bool) series.Series {
	cells := make([]string, len(vals))
	for i, v := range vals {
		if !ok[i] {
			cells[i] = naToken
			continue
		}
		cells[i] = strconv.Itoa(v)
	}
	return series.New(cells, series.Int, name)
}

// floatSeries builds a string series of formatted floats, NaN as missing.
func floatSeries(name string, vals []float64) series.Series {
	cells := make([]string, len(vals))
	for i, v := range vals {
		cells[i] = formatFloat(v)
	}
	return series.New(cells, series.String, name)
}

// formatFloat renders v with the shortest exact decimal form.
func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return naToken
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
