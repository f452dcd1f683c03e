package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.DataDir != "./data" {
		t.Errorf("expected dataDir ./data, got %s", cfg.Server.DataDir)
	}
	if cfg.Server.LogLevel != "info" {
		t.Errorf("expected logLevel info, got %s", cfg.Server.LogLevel)
	}
	if cfg.Cycle.FastIntervalSec != 300 || cfg.Cycle.NormalIntervalSec != 600 || cfg.Cycle.SlowIntervalSec != 1800 {
		t.Errorf("unexpected cycle intervals: %+v", cfg.Cycle)
	}
	if cfg.Decision.MinDecisionIntervalSec != 60 {
		t.Errorf("expected minDecisionIntervalSec 60, got %d", cfg.Decision.MinDecisionIntervalSec)
	}
	if cfg.Decision.MaxDeliberationSec != 30 {
		t.Errorf("expected maxDeliberationSec 30, got %d", cfg.Decision.MaxDeliberationSec)
	}
	if cfg.Mutation.Point != 0.05 || cfg.Mutation.Large != 0.0025 || cfg.Mutation.Weight != 0.05 {
		t.Errorf("unexpected point/large/weight rates: %+v", cfg.Mutation)
	}
	if cfg.Mutation.StarvationDeletion != 0.15 {
		t.Errorf("expected starvationDeletion 0.15, got %f", cfg.Mutation.StarvationDeletion)
	}
	if cfg.Cache.MaxSize != 1000 || cfg.Cache.TTLSec != 60 || cfg.Cache.CleanupIntervalSec != 300 {
		t.Errorf("unexpected cache config: %+v", cfg.Cache)
	}
	if cfg.Thresholds.Low != 5 || cfg.Thresholds.Emergency != 2 || cfg.Thresholds.Critical != 1 || cfg.Thresholds.Hibernation != 0.5 {
		t.Errorf("unexpected balance thresholds: %+v", cfg.Thresholds)
	}
}

func TestLoadConfigMergesWithDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "partial.json")

	partial := map[string]interface{}{
		"decision": map[string]interface{}{
			"minDecisionIntervalSec": 90,
		},
	}
	data, err := json.Marshal(partial)
	if err != nil {
		t.Fatalf("marshal partial config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0640); err != nil {
		t.Fatalf("write partial config: %v", err)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Decision.MinDecisionIntervalSec != 90 {
		t.Errorf("expected overridden minDecisionIntervalSec 90, got %d", loaded.Decision.MinDecisionIntervalSec)
	}
	if loaded.Mutation.Point != 0.05 {
		t.Errorf("expected default mutation.point to survive, got %f", loaded.Mutation.Point)
	}
	if loaded.Cache.MaxSize != 1000 {
		t.Errorf("expected default cache.maxSize to survive, got %d", loaded.Cache.MaxSize)
	}
}

func TestLoadConfigFileNotFound(t *testing.T) {
	tmpDir := t.TempDir()
	if _, err := Load(filepath.Join(tmpDir, "nonexistent.json")); err == nil {
		t.Error("expected error when loading nonexistent file, got nil")
	}
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.json")
	if err := os.WriteFile(configPath, []byte("{ invalid json }"), 0640); err != nil {
		t.Fatalf("write invalid json: %v", err)
	}
	if _, err := Load(configPath); err == nil {
		t.Error("expected error when loading invalid JSON, got nil")
	}
}

func TestSaveConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "subdir", "config.json")

	cfg := DefaultConfig()
	cfg.Cache.MaxSize = 2500

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("read saved config: %v", err)
	}
	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("unmarshal saved config: %v", err)
	}
	if loaded.Cache.MaxSize != 2500 {
		t.Errorf("expected cache.maxSize 2500, got %d", loaded.Cache.MaxSize)
	}
}

func TestSaveConfigCreatesParentDirs(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "deep", "nested", "dirs", "config.json")

	if err := DefaultConfig().Save(configPath); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("config file was not created in nested directory")
	}
}

func TestSaveConfigReadOnlyDir(t *testing.T) {
	tmpDir := t.TempDir()
	os.Chmod(tmpDir, 0444)
	defer os.Chmod(tmpDir, 0755)

	err := DefaultConfig().Save(filepath.Join(tmpDir, "config.json"))
	if err == nil {
		t.Error("expected error when saving to read-only directory")
	}
}

func TestLoad_DataDirCreation(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test.json")

	cfg := DefaultConfig()
	dataDir := filepath.Join(tmpDir, "new-data-dir")
	cfg.Server.DataDir = dataDir

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Server.DataDir != dataDir {
		t.Errorf("expected dataDir %s, got %s", dataDir, loaded.Server.DataDir)
	}
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		t.Error("expected data dir to be created")
	}
}

func TestLoad_MkdirAllError(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test.json")

	cfg := DefaultConfig()
	filePath := filepath.Join(tmpDir, "blockingfile")
	os.WriteFile(filePath, []byte("test"), 0644)
	cfg.Server.DataDir = filepath.Join(filePath, "subdir")

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := Load(configPath); err == nil {
		t.Error("expected error when data dir can't be created")
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Mutation.Point = 0.08
	cfg.CatalogueOverridePath = "catalogue.toml"

	if err := cfg.SaveYAML(configPath); err != nil {
		t.Fatalf("SaveYAML failed: %v", err)
	}
	loaded, err := LoadYAML(configPath)
	if err != nil {
		t.Fatalf("LoadYAML failed: %v", err)
	}
	if loaded.Mutation.Point != 0.08 {
		t.Errorf("expected mutation.point 0.08, got %f", loaded.Mutation.Point)
	}
	if loaded.CatalogueOverridePath != "catalogue.toml" {
		t.Errorf("expected catalogueOverridePath catalogue.toml, got %s", loaded.CatalogueOverridePath)
	}
	// defaults not present in the partial struct survive the overlay.
	if loaded.Cache.MaxSize != 1000 {
		t.Errorf("expected default cache.maxSize to survive, got %d", loaded.Cache.MaxSize)
	}
}
