package domain

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// timestampLayouts are tried in order when parsing Start_Time and End_Time.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02",
}

// canonicalLayout is how parsed timestamps are written back.
const canonicalLayout = "2006-01-02 15:04:05.999999999"

// Enrich parses timestamps, derives calendar features, imputes numeric gaps
// with column medians, and categorizes weather text. The input is not
// modified; a new table is returned.
func Enrich(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	if !HasColumn(df, ColStartTime) {
		return dataframe.DataFrame{}, fmt.Errorf("%w: %s", ErrMissingColumn, ColStartTime)
	}

	starts, err := parseTimestamps(df.Col(ColStartTime))
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	df = df.Mutate(timestampSeries(ColStartTime, starts))

	if HasColumn(df, ColEndTime) {
		ends, err := parseTimestamps(df.Col(ColEndTime))
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		df = df.Mutate(timestampSeries(ColEndTime, ends))
		df = df.Mutate(floatSeries(ColDurationMinutes, durationMinutes(starts, ends)))
	}

	for _, s := range calendarSeries(starts) {
		df = df.Mutate(s)
	}

	for _, col := range imputedColumns(df) {
		filled, err := fillMedian(df.Col(col))
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		df = df.Mutate(filled)
	}

	if HasColumn(df, ColWeatherCondition) {
		df = df.Mutate(weatherSeries(df.Col(ColWeatherCondition)))
	}

	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("enrich: %w", df.Err)
	}
	return df, nil
}

// ParseTimestamp parses a dataset timestamp in any accepted layout.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// parseTimestamps returns one time per element; zero time marks a missing value.
func parseTimestamps(s series.Series) ([]time.Time, error) {
	out := make([]time.Time, s.Len())
	for i := range out {
		e := s.Elem(i)
		if e.IsNA() {
			continue
		}
		t, err := ParseTimestamp(e.String())
		if err != nil {
			return nil, fmt.Errorf("column %s row %d: %w", s.Name, i+1, err)
		}
		out[i] = t
	}
	return out, nil
}

func timestampSeries(name string, times []time.Time) series.Series {
	cells := make([]string, len(times))
	for i, t := range times {
		if t.IsZero() {
			cells[i] = naToken
			continue
		}
		cells[i] = t.Format(canonicalLayout)
	}
	return series.New(cells, series.String, name)
}

func durationMinutes(starts, ends []time.Time) []float64 {
	out := make([]float64, len(starts))
	for i := range starts {
		if starts[i].IsZero() || ends[i].IsZero() {
			out[i] = math.NaN()
			continue
		}
		out[i] = ends[i].Sub(starts[i]).Minutes()
	}
	return out
}

// DayOfWeek returns the weekday with Monday as 0 and Sunday as 6.
func DayOfWeek(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// IsWeekend reports whether a Monday-based day index is Saturday or Sunday.
func IsWeekend(dayOfWeek int) bool {
	return dayOfWeek >= 5
}

func calendarSeries(starts []time.Time) []series.Series {
	n := len(starts)
	year, month, day := make([]int, n), make([]int, n), make([]int, n)
	hour, dow, weekend := make([]int, n), make([]int, n), make([]int, n)
	ok := make([]bool, n)

	for i, t := range starts {
		if t.IsZero() {
			continue
		}
		ok[i] = true
		year[i] = t.Year()
		month[i] = int(t.Month())
		day[i] = t.Day()
		hour[i] = t.Hour()
		dow[i] = DayOfWeek(t)
		if IsWeekend(dow[i]) {
			weekend[i] = 1
		}
	}

	return []series.Series{
		intSeries(ColYear, year, ok),
		intSeries(ColMonth, month, ok),
		intSeries(ColDay, day, ok),
		intSeries(ColHour, hour, ok),
		intSeries(ColDayOfWeek, dow, ok),
		intSeries(ColWeekend, weekend, ok),
	}
}

// imputedColumns lists the present numeric columns whose gaps get the median.
// Temperature and visibility are only considered when temperature exists.
func imputedColumns(df dataframe.DataFrame) []string {
	candidates := []string{ColSeverity, ColStartLat, ColStartLng}
	if HasColumn(df, ColTemperature) {
		candidates = append(candidates, ColTemperature, ColVisibility)
	}

	cols := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if HasColumn(df, c) {
			cols = append(cols, c)
		}
	}
	return cols
}

// fillMedian replaces missing elements with the median of the present ones.
// Present elements keep their original text. An all-missing column is
// returned unchanged.
func fillMedian(s series.Series) (series.Series, error) {
	vals, err := numericColumn(s)
	if err != nil {
		return series.Series{}, err
	}

	med := Median(vals)
	if math.IsNaN(med) {
		return s, nil
	}
	fill := formatFloat(med)

	cells := make([]string, s.Len())
	for i := range cells {
		if math.IsNaN(vals[i]) {
			cells[i] = fill
			continue
		}
		cells[i] = s.Elem(i).String()
	}
	return series.New(cells, series.String, s.Name), nil
}

// Median returns the median of the non-NaN values, or NaN if there are none.
func Median(vals []float64) float64 {
	present := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return math.NaN()
	}

	slices.Sort(present)
	mid := len(present) / 2
	if len(present)%2 == 1 {
		return present[mid]
	}
	return (present[mid-1] + present[mid]) / 2
}

func weatherSeries(conditions series.Series) series.Series {
	texts, ok := stringValues(conditions)
	cells := make([]string, len(texts))
	for i, text := range texts {
		if !ok[i] {
			cells[i] = WeatherUnknown
			continue
		}
		cells[i] = CategorizeWeather(text)
	}
	return series.New(cells, series.String, ColWeatherCategory)
}
