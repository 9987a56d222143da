package domain

import (
	"errors"
	"time"

	"github.com/go-gota/gota/dataframe"
)

// Source columns of the accident dataset.
const (
	ColID               = "ID"
	ColSeverity         = "Severity"
	ColStartTime        = "Start_Time"
	ColEndTime          = "End_Time"
	ColStartLat         = "Start_Lat"
	ColStartLng         = "Start_Lng"
	ColCity             = "City"
	ColCounty           = "County"
	ColState            = "State"
	ColTemperature      = "Temperature(F)"
	ColVisibility       = "Visibility(mi)"
	ColWeatherCondition = "Weather_Condition"
	ColSunriseSunset    = "Sunrise_Sunset"
)

// Columns derived by Enrich.
const (
	ColDurationMinutes = "Duration_Minutes"
	ColYear            = "Year"
	ColMonth           = "Month"
	ColDay             = "Day"
	ColHour            = "Hour"
	ColDayOfWeek       = "DayOfWeek"
	ColWeekend         = "Weekend"
	ColWeatherCategory = "Weather_Category"
)

// Columns that only appear in summary tables.
const (
	ColAccidentCount = "Accident_Count"
	ColAvgSeverity   = "Avg_Severity"
	ColDayName       = "DayName"
)

// Summary table names. Each is also the output file stem.
const (
	SummaryState   = "state_data"
	SummaryTime    = "time_data"
	SummaryHour    = "hour_data"
	SummaryWeekday = "weekday_data"
	SummaryWeather = "weather_data"
	SummaryCity    = "city_data"
)

// SubsetColumns is the projection read from inputs above the large-file threshold.
var SubsetColumns = []string{
	ColID, ColSeverity, ColStartTime, ColEndTime, ColStartLat, ColStartLng,
	ColCity, ColCounty, ColState, ColTemperature, ColVisibility,
	ColWeatherCondition, ColSunriseSunset,
}

var (
	// ErrInputNotFound is returned when the configured dataset file does not exist.
	ErrInputNotFound = errors.New("dataset file not found")

	// ErrMissingColumn is returned when a column required by a stage is absent.
	ErrMissingColumn = errors.New("missing required column")
)

// Summary is one aggregated projection of the enriched table.
type Summary struct {
	Name string
	// Keys lists the group-by columns, in order.
	Keys  []string
	Frame dataframe.DataFrame
}

// Empty reports whether the summary has no rows to persist.
func (s Summary) Empty() bool {
	return s.Frame.Nrow() == 0 || s.Frame.Ncol() == 0
}

// Result is the output of one pipeline run handed to every sink.
type Result struct {
	Main        dataframe.DataFrame
	Summaries   []Summary
	GeneratedAt time.Time
}
