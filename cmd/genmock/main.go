// Command genmock writes a synthetic accidents CSV in the source dataset's
// schema. The output is seeded, so a given -rows/-seed pair always produces
// the same file. Use it for local runs and to exercise the sampling cutoffs
// without the full Kaggle download.
//
// Usage:
//
//	go run ./cmd/genmock -out data/raw/US_Accidents_March23.csv -rows 5000 -seed 42
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/accident-data-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/accident-data-etl/internal/domain"
)

var baseDate = time.Date(2016, time.February, 8, 0, 0, 0, 0, time.UTC)

type place struct {
	city, county, state string
	lat, lng            float64
}

var places = []place{
	{"Dayton", "Montgomery", "OH", 39.76, -84.19},
	{"Columbus", "Franklin", "OH", 39.96, -83.00},
	{"Los Angeles", "Los Angeles", "CA", 34.05, -118.24},
	{"Sacramento", "Sacramento", "CA", 38.58, -121.49},
	{"Houston", "Harris", "TX", 29.76, -95.37},
	{"Miami", "Miami-Dade", "FL", 25.76, -80.19},
	{"Denver", "Denver", "CO", 39.74, -104.99},
	{"Seattle", "King", "WA", 47.61, -122.33},
}

var conditions = []string{
	"Clear", "Fair", "Overcast", "Mostly Cloudy", "Light Rain", "Heavy Rain",
	"Light Snow", "Freezing Rain", "Fog", "Haze", "Thunderstorm",
	"T-Storm", "Fair / Windy", "Squalls", "Tornado",
}

var header = []string{
	domain.ColID, domain.ColSeverity, domain.ColStartTime, domain.ColEndTime,
	domain.ColStartLat, domain.ColStartLng, "Distance(mi)", "Description",
	domain.ColCity, domain.ColCounty, domain.ColState,
	domain.ColTemperature, domain.ColVisibility, domain.ColWeatherCondition,
	domain.ColSunriseSunset,
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data/raw/US_Accidents_March23.csv", "output CSV path")
	rows := flag.Int("rows", 5000, "number of accident rows to generate")
	seed := flag.Uint64("seed", domain.DefaultSampleSeed, "random seed")
	flag.Parse()

	if *rows <= 0 {
		flag.Usage()
		return fmt.Errorf("-rows must be positive, got %d", *rows)
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	rng := rand.New(rand.NewPCG(*seed, *seed))
	records := make([][]string, 0, *rows+1)
	records = append(records, header)
	for i := range *rows {
		records = append(records, accident(rng, i))
	}

	if err := csvfile.WriteFile(*out, records); err != nil {
		return err
	}
	log.Printf("wrote %d rows to %s", *rows, *out)
	return nil
}

// accident builds one row. About 5% of numeric and weather cells are left
// blank so the imputation and unknown-weather paths get exercised.
func accident(rng *rand.Rand, i int) []string {
	p := places[rng.IntN(len(places))]
	start := baseDate.Add(time.Duration(rng.IntN(7*365*24*60)) * time.Minute)
	end := start.Add(time.Duration(15+rng.IntN(360)) * time.Minute)

	return []string{
		"A-" + strconv.Itoa(i+1),
		maybeBlank(rng, strconv.Itoa(1+rng.IntN(4))),
		start.Format(time.DateTime),
		end.Format(time.DateTime),
		formatCoord(p.lat + rng.NormFloat64()*0.05),
		formatCoord(p.lng + rng.NormFloat64()*0.05),
		strconv.FormatFloat(float64(rng.IntN(500))/100, 'f', 2, 64),
		fmt.Sprintf("Accident on I-%d near exit %d", 5+rng.IntN(90), 1+rng.IntN(200)),
		p.city,
		p.county,
		p.state,
		maybeBlank(rng, strconv.FormatFloat(float64(rng.IntN(1100))/10-10, 'f', 1, 64)),
		maybeBlank(rng, strconv.Itoa(rng.IntN(11))),
		maybeBlank(rng, conditions[rng.IntN(len(conditions))]),
		daylight(start),
	}
}

func maybeBlank(rng *rand.Rand, v string) string {
	if rng.IntN(20) == 0 {
		return ""
	}
	return v
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 5, 64)
}

func daylight(t time.Time) string {
	if h := t.Hour(); h >= 6 && h < 18 {
		return "Day"
	}
	return "Night"
}
