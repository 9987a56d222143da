package main

import (
	"path/filepath"
	"testing"

	"github.com/couchcryptid/accident-data-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/accident-data-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func accidentsTable() table {
	return table{
		header: []string{domain.ColID, domain.ColState, domain.ColYear, domain.ColHour, domain.ColDayOfWeek, domain.ColWeekend, domain.ColWeatherCategory},
		rows: [][]string{
			{"A-1", "OH", "2016", "5", "0", "0", "rain"},
			{"A-2", "OH", "2016", "17", "5", "1", "clear"},
			{"A-3", "", "2016", "23", "6", "1", "unknown"},
		},
	}
}

func TestValidateSummaryTotals(t *testing.T) {
	summaries := map[string]table{
		domain.SummaryState:   {header: []string{domain.ColState, domain.ColAccidentCount}, rows: [][]string{{"OH", "2"}}},
		domain.SummaryTime:    {header: []string{domain.ColYear, domain.ColMonth, domain.ColAccidentCount}, rows: [][]string{{"2016", "2", "3"}}},
		domain.SummaryHour:    {header: []string{domain.ColHour, domain.ColAccidentCount}, rows: [][]string{{"5", "1"}, {"17", "1"}, {"23", "1"}}},
		domain.SummaryWeekday: {header: []string{domain.ColDayOfWeek, domain.ColAccidentCount}, rows: [][]string{{"0", "1"}, {"5", "2"}}},
	}

	p := validateSummaryTotals(accidentsTable(), false, summaries)
	assert.True(t, p.passed(), p.errors)

	summaries[domain.SummaryState] = table{header: []string{domain.ColState, domain.ColAccidentCount}, rows: [][]string{{"OH", "5"}}}
	p = validateSummaryTotals(accidentsTable(), false, summaries)
	require.Len(t, p.errors, 1)
	assert.Contains(t, p.errors[0], "state counts sum to 5")

	p = validateSummaryTotals(accidentsTable(), true, summaries)
	assert.True(t, p.passed(), p.errors)
}

func TestValidateCalendar(t *testing.T) {
	acc := accidentsTable()
	assert.True(t, validateCalendar(acc).passed())

	acc.rows[1][5] = "0"
	p := validateCalendar(acc)
	require.Len(t, p.errors, 1)
	assert.Contains(t, p.errors[0], "DayOfWeek=5 but Weekend=0")
}

func TestValidateWeather(t *testing.T) {
	acc := accidentsTable()
	assert.True(t, validateWeather(acc, table{}).passed())

	acc.rows[0][6] = "drizzle"
	assert.False(t, validateWeather(acc, table{}).passed())
}

func TestValidateCityRanking(t *testing.T) {
	header := []string{domain.ColState, domain.ColCity, domain.ColAccidentCount}
	sorted := table{header: header, rows: [][]string{{"OH", "Dayton", "5"}, {"CA", "Fresno", "5"}, {"OH", "Columbus", "2"}}}
	assert.True(t, validateCityRanking(sorted, 50).passed())
	assert.False(t, validateCityRanking(sorted, 2).passed())

	unsorted := table{header: header, rows: [][]string{{"OH", "Columbus", "2"}, {"OH", "Dayton", "5"}}}
	assert.False(t, validateCityRanking(unsorted, 50).passed())

	assert.True(t, validateCityRanking(table{}, 50).passed())
}

func TestLoadMain_FallsBackToSample(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, csvfile.WriteFile(filepath.Join(dir, csvfile.SampleFile), [][]string{{"ID"}, {"A-1"}}))

	acc, sampled, err := loadMain(dir)
	require.NoError(t, err)
	assert.True(t, sampled)
	assert.Len(t, acc.rows, 1)

	_, _, err = loadMain(t.TempDir())
	require.Error(t, err)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	acc := accidentsTable()
	require.NoError(t, csvfile.WriteFile(filepath.Join(dir, csvfile.ProcessedFile), append([][]string{acc.header}, acc.rows...)))
	for name, records := range map[string][][]string{
		domain.SummaryState:   {{domain.ColState, domain.ColAccidentCount}, {"OH", "2"}},
		domain.SummaryTime:    {{domain.ColYear, domain.ColMonth, domain.ColAccidentCount}, {"2016", "2", "3"}},
		domain.SummaryHour:    {{domain.ColHour, domain.ColAccidentCount}, {"5", "1"}, {"17", "1"}, {"23", "1"}},
		domain.SummaryWeekday: {{domain.ColDayOfWeek, domain.ColAccidentCount}, {"0", "1"}, {"5", "1"}, {"6", "1"}},
	} {
		require.NoError(t, csvfile.WriteFile(filepath.Join(dir, name+".csv"), records))
	}

	assert.Equal(t, 0, run(dir, domain.DefaultTopCities))
	assert.Equal(t, 1, run(t.TempDir(), domain.DefaultTopCities))
}
