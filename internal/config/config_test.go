package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fellrank-data/race.report/internal/results"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DatabasePath != "race-report.db" {
		t.Errorf("DatabasePath = %q, want race-report.db", cfg.DatabasePath)
	}
	if cfg.TimeFormat != results.FormatHMS {
		t.Errorf("TimeFormat = %q, want %q", cfg.TimeFormat, results.FormatHMS)
	}
	if cfg.DefaultAgeCategory != "M" {
		t.Errorf("DefaultAgeCategory = %q, want M", cfg.DefaultAgeCategory)
	}
	if cfg.MinGames != 1 || cfg.HistogramBins != 20 {
		t.Errorf("MinGames = %d, HistogramBins = %d", cfg.MinGames, cfg.HistogramBins)
	}
	if cfg.Strict {
		t.Error("Strict should default to false")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlBody := `
database_path: /tmp/fells.db
time_format: MM:SS
strict: true
mapping:
  name: Runner
  finish_time: Time
`
	if err := os.WriteFile(path, []byte(yamlBody), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DatabasePath != "/tmp/fells.db" {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath)
	}
	if cfg.TimeFormat != results.FormatMS {
		t.Errorf("TimeFormat = %q, want %q", cfg.TimeFormat, results.FormatMS)
	}
	if !cfg.Strict {
		t.Error("Strict should be true")
	}
	if cfg.Mapping.Name != "Runner" || cfg.Mapping.FinishTime != "Time" {
		t.Errorf("Mapping = %+v", cfg.Mapping)
	}
	// Untouched keys keep their defaults.
	if cfg.DefaultAgeCategory != "M" {
		t.Errorf("DefaultAgeCategory = %q, want M", cfg.DefaultAgeCategory)
	}
}

func TestLoadFromConfigEnvVar(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("database_path: env.db\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("RACEREPORT_CONFIG", path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DatabasePath != "env.db" {
		t.Errorf("DatabasePath = %q, want env.db", cfg.DatabasePath)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("database_path: file.db\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("RACEREPORT_DATABASE_PATH", "env-wins.db")
	t.Setenv("RACEREPORT_DEFAULT_GENDER", "F")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DatabasePath != "env-wins.db" {
		t.Errorf("DatabasePath = %q, want env-wins.db", cfg.DatabasePath)
	}
	if cfg.DefaultGender != "F" {
		t.Errorf("DefaultGender = %q, want F", cfg.DefaultGender)
	}
}

func TestLoadRejectsBadTimeFormat(t *testing.T) {
	t.Setenv("RACEREPORT_TIME_FORMAT", "fortnights")
	if _, err := Load(""); err == nil {
		t.Fatal("want error for unknown time format")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Fatal("want error for missing config file")
	}
}

func TestNormalizerConfig(t *testing.T) {
	cfg := Defaults()
	nc := cfg.NormalizerConfig("Ben Nevis Race", 2024, "hill")
	if nc.Mapping != nil {
		t.Error("empty mapping should produce nil Mapping")
	}
	if nc.RaceName != "Ben Nevis Race" || nc.RaceYear != 2024 || nc.RaceCategory != "hill" {
		t.Errorf("race fields = %q %d %q", nc.RaceName, nc.RaceYear, nc.RaceCategory)
	}

	cfg.Mapping.Name = "Runner"
	nc = cfg.NormalizerConfig("Ben Nevis Race", 2024, "hill")
	if nc.Mapping == nil || nc.Mapping.Name != "Runner" {
		t.Errorf("Mapping = %+v", nc.Mapping)
	}
}
