// Package domain models the US traffic accident dataset and the pure
// transformations applied to it.
//
// # Data Source
//
// Records come from the "US Accidents" Kaggle dataset
// (https://www.kaggle.com/datasets/sobhanmoosavi/us-accidents), a single CSV
// with one row per reported accident. The file is downloaded manually and
// placed at the configured input path; nothing in this service fetches it.
//
// # Dataset Conventions
//
// Timestamps:
//
//	"2016-02-08 05:46:00" in local wall time without a zone. Later releases
//	append fractional seconds ("2016-02-08 05:46:00.000000000"). Values are
//	parsed as naive times (UTC location) so calendar fields match the source.
//
// Severity:
//
//	Ordinal 1–4, where 1 is the least impact on traffic.
//
// Missing values:
//
//	Empty cells and the usual NA spellings (NA, N/A, NaN, null, None, #N/A)
//	load as NA elements. Numeric columns are imputed with their median by
//	[Enrich]; group keys that are NA are skipped by [Aggregate].
//
// Weather conditions:
//
//	Free text from the nearest airport weather station, e.g. "Light Rain",
//	"Partly Cloudy", "Thunderstorms and Rain". [CategorizeWeather] folds the
//	~140 distinct strings into a small vocabulary by ordered keyword match.
//
// # Table Representation
//
// The working table is a gota [dataframe.DataFrame]. Source columns are kept
// as string series so values are written back exactly as read; derived
// integer fields are int series and derived floats are formatted strings.
//
// [dataframe.DataFrame]: https://pkg.go.dev/github.com/go-gota/gota/dataframe#DataFrame
package domain
