package config

import (
	"fmt"
	"log/slog"
	"reflect"
)

// ReloadResult describes what changed during a config reload.
type ReloadResult struct {
	Changed []string // section names that differed from the running config
	Applied []string // hot-reloaded in place
	Skipped []string // differed but require a process restart
}

// restartRequiredSections lists top-level Config sections that are
// only read once at process startup — DataDir is opened once by Load,
// and Cycle's bands are a display/default surface for the cycle_speed
// gene rather than something the survival loop re-reads per tick — so
// changing them in a running process would have no effect until a
// restart picks up the new value.
var restartRequiredSections = map[string]bool{
	"Server.DataDir": true,
	"Cycle":          true,
}

// Reload re-reads path, diffs the result against cfg section by
// section, and applies every hot-reloadable section (Decision,
// Mutation, Cache, Thresholds, CatalogueOverridePath, Server.LogLevel)
// in place. Sections in restartRequiredSections are reported as
// skipped rather than applied, since a running agent population has
// already captured their previous value.
func (cfg *Config) Reload(path string) (*ReloadResult, error) {
	next, err := Load(path)
	if err != nil {
		return nil, fmt.Errorf("reload config: %w", err)
	}

	result := &ReloadResult{}

	if cfg.Server.DataDir != next.Server.DataDir {
		result.Changed = append(result.Changed, "Server.DataDir")
		result.Skipped = append(result.Skipped, "Server.DataDir (requires restart)")
	}
	if cfg.Server.LogLevel != next.Server.LogLevel {
		result.Changed = append(result.Changed, "Server.LogLevel")
		cfg.Server.LogLevel = next.Server.LogLevel
		result.Applied = append(result.Applied, "Server.LogLevel")
	}
	if !reflect.DeepEqual(cfg.Cycle, next.Cycle) {
		result.Changed = append(result.Changed, "Cycle")
		result.Skipped = append(result.Skipped, "Cycle (requires restart)")
	}
	if !reflect.DeepEqual(cfg.Decision, next.Decision) {
		result.Changed = append(result.Changed, "Decision")
		cfg.Decision = next.Decision
		result.Applied = append(result.Applied, "Decision")
	}
	if !reflect.DeepEqual(cfg.Mutation, next.Mutation) {
		result.Changed = append(result.Changed, "Mutation")
		cfg.Mutation = next.Mutation
		result.Applied = append(result.Applied, "Mutation")
	}
	if !reflect.DeepEqual(cfg.Cache, next.Cache) {
		result.Changed = append(result.Changed, "Cache")
		cfg.Cache = next.Cache
		result.Applied = append(result.Applied, "Cache")
	}
	if !reflect.DeepEqual(cfg.Thresholds, next.Thresholds) {
		result.Changed = append(result.Changed, "Thresholds")
		cfg.Thresholds = next.Thresholds
		result.Applied = append(result.Applied, "Thresholds")
	}
	if cfg.CatalogueOverridePath != next.CatalogueOverridePath {
		result.Changed = append(result.Changed, "CatalogueOverridePath")
		cfg.CatalogueOverridePath = next.CatalogueOverridePath
		result.Applied = append(result.Applied, "CatalogueOverridePath")
	}

	return result, nil
}

// LogResult logs a reload's outcome at a level matching its severity:
// applied sections at info, skipped ones at warn so an operator notices
// a change that silently did not take effect.
func (r *ReloadResult) LogResult(logger *slog.Logger) {
	if len(r.Changed) == 0 {
		logger.Info("config reload: no changes detected")
		return
	}

	logger.Info("config reload complete",
		"changed", len(r.Changed), "applied", len(r.Applied), "skipped", len(r.Skipped))

	for _, section := range r.Applied {
		logger.Info("config section hot-reloaded", "section", section)
	}
	for _, section := range r.Skipped {
		logger.Warn("config section requires restart", "section", section)
	}
}
