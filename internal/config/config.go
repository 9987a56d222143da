package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all job settings, populated from environment variables.
type Config struct {
	InputPath       string
	OutputDir       string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Sampling thresholds. Inputs larger than LargeFileBytes are read as a
	// column subset and sampled down to LargeFileSampleFraction of their rows;
	// outputs with more than OutputSampleRows rows are written as a sample.
	LargeFileBytes          int64
	LargeFileSampleFraction float64
	OutputSampleRows        int
	SampleSeed              uint64
	TopCities               int

	// Optional sinks.
	XLSXExportPath string
	KafkaBrokers   []string
	KafkaTopic     string
	PushgatewayURL string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	largeFileBytes, err := parseInt64("LARGE_FILE_BYTES", 1_000_000_000)
	if err != nil {
		return nil, err
	}

	fraction, err := parseFraction("LARGE_FILE_SAMPLE_FRACTION", 0.1)
	if err != nil {
		return nil, err
	}

	sampleRows, err := parsePositiveInt("OUTPUT_SAMPLE_ROWS", 100_000)
	if err != nil {
		return nil, err
	}

	topCities, err := parsePositiveInt("TOP_CITIES", 50)
	if err != nil {
		return nil, err
	}

	seed, err := strconv.ParseUint(sharedcfg.EnvOrDefault("SAMPLE_SEED", "42"), 10, 64)
	if err != nil {
		return nil, errors.New("invalid SAMPLE_SEED")
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		InputPath:       sharedcfg.EnvOrDefault("INPUT_PATH", "data/raw/US_Accidents_March23.csv"),
		OutputDir:       sharedcfg.EnvOrDefault("OUTPUT_DIR", "data/processed"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		LargeFileBytes:          largeFileBytes,
		LargeFileSampleFraction: fraction,
		OutputSampleRows:        sampleRows,
		SampleSeed:              seed,
		TopCities:               topCities,

		XLSXExportPath: os.Getenv("XLSX_EXPORT_PATH"),
		KafkaBrokers:   brokers,
		KafkaTopic:     sharedcfg.EnvOrDefault("KAFKA_TOPIC", "accident-summaries"),
		PushgatewayURL: os.Getenv("PUSHGATEWAY_URL"),
	}

	if cfg.InputPath == "" {
		return nil, errors.New("INPUT_PATH is required")
	}
	if cfg.OutputDir == "" {
		return nil, errors.New("OUTPUT_DIR is required")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_BROKERS is set but KAFKA_TOPIC is empty")
	}

	return cfg, nil
}

func parseInt64(key string, def int64) (int64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

// parseFraction accepts values in (0, 1].
func parseFraction(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 || f > 1 {
		return 0, fmt.Errorf("invalid %s: must be in (0, 1]", key)
	}
	return f, nil
}
