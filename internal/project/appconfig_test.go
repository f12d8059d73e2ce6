package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/SlabNest/internal/model"
)

func TestSaveAndLoadAppConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := model.DefaultAppConfig()
	cfg.DefaultMinGap = 4.0
	cfg.PopulationSize = 30
	cfg.RandomSeed = 7
	cfg.RecentJobs = []string{"/tmp/job1.yaml", "/tmp/job2.json"}

	if err := SaveAppConfig(path, cfg); err != nil {
		t.Fatalf("SaveAppConfig failed: %v", err)
	}

	loaded, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}

	if loaded.DefaultMinGap != 4.0 {
		t.Errorf("expected DefaultMinGap=4.0, got %f", loaded.DefaultMinGap)
	}
	if loaded.PopulationSize != 30 {
		t.Errorf("expected PopulationSize=30, got %d", loaded.PopulationSize)
	}
	if loaded.RandomSeed != 7 {
		t.Errorf("expected RandomSeed=7, got %d", loaded.RandomSeed)
	}
	if len(loaded.RecentJobs) != 2 {
		t.Errorf("expected 2 recent jobs, got %d", len(loaded.RecentJobs))
	}
}

func TestLoadAppConfigMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent", "config.json")

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}

	defaults := model.DefaultAppConfig()
	if cfg.PopulationSize != defaults.PopulationSize {
		t.Errorf("expected default population %d, got %d", defaults.PopulationSize, cfg.PopulationSize)
	}
	if cfg.RecentJobs == nil {
		t.Error("expected non-nil RecentJobs")
	}
}

func TestLoadAppConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"default_min_gap": 2.5}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if cfg.DefaultMinGap != 2.5 {
		t.Errorf("expected DefaultMinGap=2.5, got %f", cfg.DefaultMinGap)
	}
	if cfg.MaxGenerations != model.DefaultAppConfig().MaxGenerations {
		t.Errorf("expected default MaxGenerations, got %d", cfg.MaxGenerations)
	}
	if !cfg.DefaultAllowRotation {
		t.Error("expected rotation default to survive a partial file")
	}
}

func TestLoadAppConfigInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json}"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadAppConfig(path); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestSaveAppConfigCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "config.json")

	if err := SaveAppConfig(path, model.DefaultAppConfig()); err != nil {
		t.Fatalf("SaveAppConfig failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file not created: %v", err)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()
	if filepath.Base(path) != "config.json" {
		t.Errorf("expected config.json, got %s", filepath.Base(path))
	}
	if filepath.Base(filepath.Dir(path)) != ".slabnest" {
		t.Errorf("expected .slabnest directory, got %s", filepath.Dir(path))
	}
}
