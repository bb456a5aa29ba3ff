package config

import (
	"errors"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	LogFile         string // optional; enables a rotating file alongside stdout
	ShutdownTimeout time.Duration

	// Snapshot generation.
	RecordCount  int
	RandomSeed   uint64
	WindowDays   int
	CaseIDPrefix string

	// DataCSV, when set, loads the snapshot from a case export instead of
	// generating it.
	DataCSV string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	recordCount, err := parsePositiveInt("RECORD_COUNT", "500")
	if err != nil {
		return nil, err
	}

	windowDays, err := parsePositiveInt("GENERATION_WINDOW_DAYS", "365")
	if err != nil {
		return nil, err
	}

	seed, err := strconv.ParseUint(sharedcfg.EnvOrDefault("RANDOM_SEED", "42"), 10, 64)
	if err != nil {
		return nil, errors.New("invalid RANDOM_SEED: must be a non-negative integer")
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		LogFile:         sharedcfg.EnvOrDefault("LOG_FILE", ""),
		ShutdownTimeout: shutdownTimeout,

		RecordCount:  recordCount,
		RandomSeed:   seed,
		WindowDays:   windowDays,
		CaseIDPrefix: sharedcfg.EnvOrDefault("CASE_ID_PREFIX", "WHW"),

		DataCSV: sharedcfg.EnvOrDefault("DATA_CSV", ""),
	}

	return cfg, nil
}

func parsePositiveInt(key, fallback string) (int, error) {
	n, err := strconv.Atoi(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || n <= 0 {
		return 0, errors.New("invalid " + key + ": must be a positive integer")
	}
	return n, nil
}
