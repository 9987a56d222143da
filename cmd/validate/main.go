// Command validate checks the invariants of an ETL output directory: summary
// totals agree with the main table, calendar flags are consistent, weather
// categories stay within the fixed vocabulary, and the city table is ranked
// and capped.
//
// Usage:
//
//	go run ./cmd/validate -dir data/processed
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/couchcryptid/accident-data-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/accident-data-etl/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// table is a CSV file with its header split off.
type table struct {
	header []string
	rows   [][]string
}

func (t table) col(name string) int {
	return slices.Index(t.header, name)
}

func main() {
	dir := flag.String("dir", "data/processed", "ETL output directory")
	topCities := flag.Int("top-cities", domain.DefaultTopCities, "maximum rows expected in city_data.csv")
	flag.Parse()

	os.Exit(run(*dir, *topCities))
}

func run(dir string, topCities int) int {
	fmt.Println("=== Accident Output Validation ===")
	fmt.Println()

	acc, sampled, err := loadMain(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load main table: %v\n", err)
		return 1
	}

	summaries := map[string]table{}
	for _, name := range []string{
		domain.SummaryState, domain.SummaryTime, domain.SummaryHour,
		domain.SummaryWeekday, domain.SummaryWeather, domain.SummaryCity,
	} {
		t, ok, err := loadTable(filepath.Join(dir, name+".csv"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load %s: %v\n", name, err)
			return 1
		}
		if ok {
			summaries[name] = t
		}
	}

	phases := []*phase{
		validateSummaryTotals(acc, sampled, summaries),
		validateCalendar(acc),
		validateWeather(acc, summaries[domain.SummaryWeather]),
		validateCityRanking(summaries[domain.SummaryCity], topCities),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d main (sampled=%t), %d summary tables\n", len(acc.rows), sampled, len(summaries))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

// loadMain reads the processed table, falling back to the sample file.
func loadMain(dir string) (table, bool, error) {
	t, ok, err := loadTable(filepath.Join(dir, csvfile.ProcessedFile))
	if err != nil || ok {
		return t, false, err
	}
	t, ok, err = loadTable(filepath.Join(dir, csvfile.SampleFile))
	if err != nil {
		return table{}, false, err
	}
	if !ok {
		return table{}, false, fmt.Errorf("neither %s nor %s found in %s", csvfile.ProcessedFile, csvfile.SampleFile, dir)
	}
	return t, true, nil
}

// loadTable reads a CSV file. A missing file is reported with ok=false.
func loadTable(path string) (table, bool, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return table{}, false, nil
	}
	records, err := csvfile.ReadFile(path)
	if err != nil {
		return table{}, false, err
	}
	if len(records) == 0 {
		return table{}, false, fmt.Errorf("%s: no header", path)
	}
	return table{header: records[0], rows: records[1:]}, true, nil
}

// ── Validation phases ──

// validateSummaryTotals checks that per-state counts add up to the main
// table's rows with a state. A sampled main table only bounds the totals.
func validateSummaryTotals(acc table, sampled bool, summaries map[string]table) *phase {
	p := &phase{name: "Phase 1: Summary totals"}

	for _, name := range []string{domain.SummaryState, domain.SummaryTime, domain.SummaryHour, domain.SummaryWeekday} {
		if _, ok := summaries[name]; !ok {
			p.errorf("%s.csv missing", name)
		}
	}

	state, ok := summaries[domain.SummaryState]
	if !ok {
		return p
	}
	total, err := sumColumn(state, domain.ColAccidentCount)
	if err != nil {
		p.errorf("state_data: %v", err)
		return p
	}

	withState := countPresent(acc, domain.ColState)

	switch {
	case sampled && total < withState:
		p.errorf("state counts sum to %d, fewer than the %d sampled rows with a state", total, withState)
	case !sampled && total != withState:
		p.errorf("state counts sum to %d, main table has %d rows with a state", total, withState)
	}

	keyColumns := map[string]string{
		domain.SummaryTime:    domain.ColYear,
		domain.SummaryHour:    domain.ColHour,
		domain.SummaryWeekday: domain.ColDayOfWeek,
	}
	for _, name := range []string{domain.SummaryTime, domain.SummaryHour, domain.SummaryWeekday} {
		t, ok := summaries[name]
		if !ok {
			continue
		}
		sum, err := sumColumn(t, domain.ColAccidentCount)
		if err != nil {
			p.errorf("%s: %v", name, err)
			continue
		}
		if want := countPresent(acc, keyColumns[name]); !sampled && sum != want {
			p.errorf("%s counts sum to %d, main table has %d rows with a %s", name, sum, want, keyColumns[name])
		}
	}
	return p
}

// validateCalendar checks Weekend against DayOfWeek on every main row that has
// a timestamp.
func validateCalendar(acc table) *phase {
	p := &phase{name: "Phase 2: Calendar consistency"}

	dowIdx, weekendIdx := acc.col(domain.ColDayOfWeek), acc.col(domain.ColWeekend)
	if dowIdx < 0 || weekendIdx < 0 {
		p.errorf("main table lacks %s or %s", domain.ColDayOfWeek, domain.ColWeekend)
		return p
	}

	for i, r := range acc.rows {
		if r[dowIdx] == "" {
			continue
		}
		dow, err := strconv.Atoi(r[dowIdx])
		if err != nil || dow < 0 || dow > 6 {
			p.errorf("row %d: DayOfWeek %q out of range", i+1, r[dowIdx])
			continue
		}
		want := "0"
		if domain.IsWeekend(dow) {
			want = "1"
		}
		if r[weekendIdx] != want {
			p.errorf("row %d: DayOfWeek=%d but Weekend=%s", i+1, dow, r[weekendIdx])
		}
	}
	return p
}

// validateWeather checks every category against the vocabulary.
func validateWeather(acc, weather table) *phase {
	p := &phase{name: "Phase 3: Weather vocabulary"}

	valid := map[string]bool{}
	for _, c := range domain.WeatherCategories {
		valid[c] = true
	}

	if idx := acc.col(domain.ColWeatherCategory); idx >= 0 {
		for i, r := range acc.rows {
			if !valid[r[idx]] {
				p.errorf("row %d: unknown weather category %q", i+1, r[idx])
			}
		}
	}
	if idx := weather.col(domain.ColWeatherCategory); idx >= 0 {
		for _, r := range weather.rows {
			if !valid[r[idx]] {
				p.errorf("weather_data: unknown category %q", r[idx])
			}
		}
	}
	return p
}

// validateCityRanking checks the city table is capped and sorted by count.
func validateCityRanking(city table, limit int) *phase {
	p := &phase{name: "Phase 4: City ranking"}

	if city.header == nil {
		return p
	}
	if len(city.rows) > limit {
		p.errorf("city_data has %d rows, limit is %d", len(city.rows), limit)
	}

	idx := city.col(domain.ColAccidentCount)
	if idx < 0 {
		p.errorf("city_data lacks %s", domain.ColAccidentCount)
		return p
	}
	prev := -1
	for i, r := range city.rows {
		n, err := strconv.Atoi(r[idx])
		if err != nil {
			p.errorf("city_data row %d: count %q is not an integer", i+1, r[idx])
			continue
		}
		if prev >= 0 && n > prev {
			p.errorf("city_data row %d: count %d follows %d", i+1, n, prev)
		}
		prev = n
	}
	return p
}

func countPresent(t table, name string) int {
	idx := t.col(name)
	if idx < 0 {
		return 0
	}
	n := 0
	for _, r := range t.rows {
		if r[idx] != "" {
			n++
		}
	}
	return n
}

func sumColumn(t table, name string) (int, error) {
	idx := t.col(name)
	if idx < 0 {
		return 0, fmt.Errorf("missing column %s", name)
	}
	sum := 0
	for i, r := range t.rows {
		n, err := strconv.Atoi(r[idx])
		if err != nil {
			return 0, fmt.Errorf("row %d: %q is not an integer", i+1, r[idx])
		}
		sum += n
	}
	return sum, nil
}
