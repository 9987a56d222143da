package domain

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// DefaultTopCities is the length cap of the city summary.
const DefaultTopCities = 50

// dayNames maps a Monday-based day index to its English name.
var dayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// DayName returns the English weekday name for a Monday-based day index.
func DayName(dayOfWeek int) string {
	if dayOfWeek < 0 || dayOfWeek >= len(dayNames) {
		return ""
	}
	return dayNames[dayOfWeek]
}

// Aggregate computes the six summary tables from an enriched table, in the
// order state, time, hour, weekday, weather, city. Weather and city
// summaries are empty when their source column is absent. Group keys that
// are missing are skipped.
func Aggregate(df dataframe.DataFrame, topCities int) ([]Summary, error) {
	if topCities <= 0 {
		topCities = DefaultTopCities
	}

	state, err := stateSummary(df)
	if err != nil {
		return nil, err
	}
	timeData, err := timeSummary(df)
	if err != nil {
		return nil, err
	}
	hour, err := hourSummary(df)
	if err != nil {
		return nil, err
	}
	weekday, err := weekdaySummary(df)
	if err != nil {
		return nil, err
	}
	weather, err := weatherSummary(df)
	if err != nil {
		return nil, err
	}
	city, err := citySummary(df, topCities)
	if err != nil {
		return nil, err
	}

	summaries := []Summary{state, timeData, hour, weekday, weather, city}
	for _, s := range summaries {
		if s.Frame.Err != nil {
			return nil, fmt.Errorf("aggregate %s: %w", s.Name, s.Frame.Err)
		}
	}
	return summaries, nil
}

// meanAcc accumulates a NaN-skipping mean.
type meanAcc struct {
	sum float64
	n   int
}

func (m *meanAcc) add(v float64) {
	if math.IsNaN(v) {
		return
	}
	m.sum += v
	m.n++
}

func (m meanAcc) value() float64 {
	if m.n == 0 {
		return math.NaN()
	}
	return m.sum / float64(m.n)
}

func requireColumns(df dataframe.DataFrame, summary string, cols ...string) error {
	for _, c := range cols {
		if !HasColumn(df, c) {
			return fmt.Errorf("%s: %w: %s", summary, ErrMissingColumn, c)
		}
	}
	return nil
}

func stateSummary(df dataframe.DataFrame) (Summary, error) {
	if err := requireColumns(df, SummaryState, ColState, ColSeverity); err != nil {
		return Summary{}, err
	}
	states, ok := stringValues(df.Col(ColState))
	severity, err := numericColumn(df.Col(ColSeverity))
	if err != nil {
		return Summary{}, err
	}

	counts := map[string]int{}
	means := map[string]*meanAcc{}
	for i, st := range states {
		if !ok[i] {
			continue
		}
		counts[st]++
		if means[st] == nil {
			means[st] = &meanAcc{}
		}
		means[st].add(severity[i])
	}

	keys := sortedKeys(counts, cmp.Compare[string])
	countCol := make([]int, len(keys))
	avgCol := make([]float64, len(keys))
	for i, k := range keys {
		countCol[i] = counts[k]
		avgCol[i] = means[k].value()
	}

	return Summary{
		Name: SummaryState,
		Keys: []string{ColState},
		Frame: dataframe.New(
			series.New(keys, series.String, ColState),
			series.New(countCol, series.Int, ColAccidentCount),
			floatSeries(ColAvgSeverity, avgCol),
		),
	}, nil
}

type yearMonth struct{ year, month int }

func timeSummary(df dataframe.DataFrame) (Summary, error) {
	if err := requireColumns(df, SummaryTime, ColYear, ColMonth); err != nil {
		return Summary{}, err
	}
	years, yok := intValues(df.Col(ColYear))
	months, mok := intValues(df.Col(ColMonth))

	counts := map[yearMonth]int{}
	for i := range years {
		if !yok[i] || !mok[i] {
			continue
		}
		counts[yearMonth{years[i], months[i]}]++
	}

	keys := sortedKeys(counts, func(a, b yearMonth) int {
		return cmp.Or(cmp.Compare(a.year, b.year), cmp.Compare(a.month, b.month))
	})
	yearCol, monthCol, countCol := make([]int, len(keys)), make([]int, len(keys)), make([]int, len(keys))
	for i, k := range keys {
		yearCol[i], monthCol[i], countCol[i] = k.year, k.month, counts[k]
	}

	return Summary{
		Name: SummaryTime,
		Keys: []string{ColYear, ColMonth},
		Frame: dataframe.New(
			series.New(yearCol, series.Int, ColYear),
			series.New(monthCol, series.Int, ColMonth),
			series.New(countCol, series.Int, ColAccidentCount),
		),
	}, nil
}

func hourSummary(df dataframe.DataFrame) (Summary, error) {
	if err := requireColumns(df, SummaryHour, ColHour); err != nil {
		return Summary{}, err
	}
	hours, ok := intValues(df.Col(ColHour))

	counts := map[int]int{}
	for i, h := range hours {
		if ok[i] {
			counts[h]++
		}
	}

	keys := sortedKeys(counts, cmp.Compare[int])
	countCol := make([]int, len(keys))
	for i, k := range keys {
		countCol[i] = counts[k]
	}

	return Summary{
		Name: SummaryHour,
		Keys: []string{ColHour},
		Frame: dataframe.New(
			series.New(keys, series.Int, ColHour),
			series.New(countCol, series.Int, ColAccidentCount),
		),
	}, nil
}

type dayKey struct{ dow, weekend int }

func weekdaySummary(df dataframe.DataFrame) (Summary, error) {
	if err := requireColumns(df, SummaryWeekday, ColDayOfWeek, ColWeekend); err != nil {
		return Summary{}, err
	}
	days, dok := intValues(df.Col(ColDayOfWeek))
	weekends, wok := intValues(df.Col(ColWeekend))

	counts := map[dayKey]int{}
	for i := range days {
		if !dok[i] || !wok[i] {
			continue
		}
		counts[dayKey{days[i], weekends[i]}]++
	}

	keys := sortedKeys(counts, func(a, b dayKey) int {
		return cmp.Or(cmp.Compare(a.dow, b.dow), cmp.Compare(a.weekend, b.weekend))
	})
	dowCol, weekendCol, countCol := make([]int, len(keys)), make([]int, len(keys)), make([]int, len(keys))
	nameCol := make([]string, len(keys))
	for i, k := range keys {
		dowCol[i], weekendCol[i], countCol[i] = k.dow, k.weekend, counts[k]
		nameCol[i] = DayName(k.dow)
	}

	return Summary{
		Name: SummaryWeekday,
		Keys: []string{ColDayOfWeek, ColWeekend},
		Frame: dataframe.New(
			series.New(dowCol, series.Int, ColDayOfWeek),
			series.New(weekendCol, series.Int, ColWeekend),
			series.New(countCol, series.Int, ColAccidentCount),
			series.New(nameCol, series.String, ColDayName),
		),
	}, nil
}

// weatherSummary counts rows with a present ID per weather category.
func weatherSummary(df dataframe.DataFrame) (Summary, error) {
	empty := Summary{Name: SummaryWeather, Keys: []string{ColWeatherCategory}}
	if !HasColumn(df, ColWeatherCategory) {
		return empty, nil
	}
	if err := requireColumns(df, SummaryWeather, ColID, ColSeverity); err != nil {
		return Summary{}, err
	}
	categories, cok := stringValues(df.Col(ColWeatherCategory))
	_, idok := stringValues(df.Col(ColID))
	severity, err := numericColumn(df.Col(ColSeverity))
	if err != nil {
		return Summary{}, err
	}

	counts := map[string]int{}
	means := map[string]*meanAcc{}
	for i, c := range categories {
		if !cok[i] {
			continue
		}
		if _, seen := counts[c]; !seen {
			counts[c] = 0
			means[c] = &meanAcc{}
		}
		if idok[i] {
			counts[c]++
		}
		means[c].add(severity[i])
	}

	keys := sortedKeys(counts, cmp.Compare[string])
	countCol := make([]int, len(keys))
	avgCol := make([]float64, len(keys))
	for i, k := range keys {
		countCol[i] = counts[k]
		avgCol[i] = means[k].value()
	}

	empty.Frame = dataframe.New(
		series.New(keys, series.String, ColWeatherCategory),
		series.New(countCol, series.Int, ColAccidentCount),
		floatSeries(ColAvgSeverity, avgCol),
	)
	return empty, nil
}

type cityKey struct{ state, city string }

// citySummary ranks (state, city) pairs by accident count, descending, ties
// broken by state then city, and keeps the first limit rows.
func citySummary(df dataframe.DataFrame, limit int) (Summary, error) {
	summary := Summary{Name: SummaryCity, Keys: []string{ColState, ColCity}}
	if !HasColumn(df, ColCity) {
		return summary, nil
	}
	if err := requireColumns(df, SummaryCity, ColState); err != nil {
		return Summary{}, err
	}
	states, sok := stringValues(df.Col(ColState))
	cities, cok := stringValues(df.Col(ColCity))

	counts := map[cityKey]int{}
	for i := range states {
		if !sok[i] || !cok[i] {
			continue
		}
		counts[cityKey{states[i], cities[i]}]++
	}

	keys := sortedKeys(counts, func(a, b cityKey) int {
		return cmp.Or(
			cmp.Compare(counts[b], counts[a]),
			cmp.Compare(a.state, b.state),
			cmp.Compare(a.city, b.city),
		)
	})
	if len(keys) > limit {
		keys = keys[:limit]
	}

	stateCol, cityCol, countCol := make([]string, len(keys)), make([]string, len(keys)), make([]int, len(keys))
	for i, k := range keys {
		stateCol[i], cityCol[i], countCol[i] = k.state, k.city, counts[k]
	}

	summary.Frame = dataframe.New(
		series.New(stateCol, series.String, ColState),
		series.New(cityCol, series.String, ColCity),
		series.New(countCol, series.Int, ColAccidentCount),
	)
	return summary, nil
}

func sortedKeys[K comparable, V any](m map[K]V, compare func(a, b K) int) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compare)
	return keys
}
