package config

import (
	"path/filepath"
	"testing"
)

func TestReloadDetectsAndAppliesMutationChange(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	cfg := DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	onDisk := DefaultConfig()
	onDisk.Mutation.Point = 0.2
	if err := onDisk.Save(configPath); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	result, err := cfg.Reload(configPath)
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	if !contains(result.Changed, "Mutation") {
		t.Errorf("expected Mutation in changed, got %v", result.Changed)
	}
	if !contains(result.Applied, "Mutation") {
		t.Errorf("expected Mutation in applied, got %v", result.Applied)
	}
	if cfg.Mutation.Point != 0.2 {
		t.Errorf("expected mutation.point to be hot-applied, got %f", cfg.Mutation.Point)
	}
}

func TestReloadSkipsDataDirRestartRequired(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	cfg := DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	originalDataDir := cfg.Server.DataDir

	onDisk := DefaultConfig()
	onDisk.Server.DataDir = filepath.Join(tmpDir, "other-data-dir")
	if err := onDisk.Save(configPath); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	result, err := cfg.Reload(configPath)
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	if !contains(result.Skipped, "Server.DataDir (requires restart)") {
		t.Errorf("expected Server.DataDir in skipped, got %v", result.Skipped)
	}
	if cfg.Server.DataDir != originalDataDir {
		t.Errorf("expected Server.DataDir to remain %s, got %s", originalDataDir, cfg.Server.DataDir)
	}
}

func TestReloadNoChanges(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	cfg := DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	result, err := cfg.Reload(configPath)
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if len(result.Changed) != 0 {
		t.Errorf("expected no changes, got %v", result.Changed)
	}
}

func TestReloadMissingFile(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := DefaultConfig()

	if _, err := cfg.Reload(filepath.Join(tmpDir, "missing.json")); err == nil {
		t.Error("expected error when reloading a nonexistent file")
	}
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
