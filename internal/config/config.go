// Package config loads pipeline configuration by layering defaults, an
// optional YAML file and RACEREPORT_-prefixed environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/fellrank-data/race.report/internal/results"
)

// Config is the full pipeline configuration.
type Config struct {
	// DatabasePath is the SQLite file results and ratings are stored in.
	DatabasePath string `koanf:"database_path"`

	// TimeFormat is the declared source time format: HH:MM:SS, MM:SS or
	// seconds.
	TimeFormat string `koanf:"time_format"`

	// DefaultAgeCategory and DefaultGender apply to rows carrying neither
	// gender nor category.
	DefaultAgeCategory string `koanf:"default_age_category"`
	DefaultGender      string `koanf:"default_gender"`

	// Strict makes row validation failures abort an import.
	Strict bool `koanf:"strict"`

	// Mapping pins source columns explicitly; when empty, columns are
	// auto-detected per file.
	Mapping results.ColumnMapping `koanf:"mapping"`

	// MinGames excludes sparsely compared runners from rankings.
	MinGames int `koanf:"min_games"`

	// HistogramBins controls the finish-time distribution chart.
	HistogramBins int `koanf:"histogram_bins"`
}

// Defaults returns the stock configuration.
func Defaults() *Config {
	return &Config{
		DatabasePath:       "race-report.db",
		TimeFormat:         results.FormatHMS,
		DefaultAgeCategory: "M",
		MinGames:           1,
		HistogramBins:      20,
	}
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (Defaults())
//  2. file (YAML) if RACEREPORT_CONFIG is set or configPath is given
//  3. env (prefix RACEREPORT_)
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath == "" {
		configPath = os.Getenv("RACEREPORT_CONFIG")
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Environment variables: RACEREPORT_DATABASE_PATH, RACEREPORT_STRICT, ...
	// Preserve underscores to match the koanf tags on the struct.
	envProvider := env.Provider("RACEREPORT_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "racereport_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment config: %w", err)
	}

	cfg := *Defaults()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if _, err := results.NewTimeParser(cfg.TimeFormat); err != nil {
		return nil, err
	}
	if cfg.DatabasePath == "" {
		return nil, fmt.Errorf("database_path must not be empty")
	}
	return &cfg, nil
}

// NormalizerConfig translates the pipeline configuration into a results
// normalizer configuration for one race edition.
func (c *Config) NormalizerConfig(raceName string, raceYear int, raceCategory string) results.Config {
	mapping := c.Mapping
	var mappingPtr *results.ColumnMapping
	if !mapping.IsEmpty() {
		mappingPtr = &mapping
	}
	return results.Config{
		Mapping:            mappingPtr,
		TimeFormat:         c.TimeFormat,
		RaceName:           raceName,
		RaceYear:           raceYear,
		RaceCategory:       raceCategory,
		DefaultAgeCategory: c.DefaultAgeCategory,
		DefaultGender:      results.Gender(c.DefaultGender),
		Strict:             c.Strict,
	}
}
