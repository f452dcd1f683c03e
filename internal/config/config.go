// Package config holds EGDE's contractual runtime settings: cycle
// timing, decision rate limits, mutation-operator rates, cache sizing,
// and balance-mode thresholds. Every default here is the literal value
// spec.md §6 declares contractual; a deployment may override via a
// config file, but the zero-config defaults must reproduce the spec.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the full set of operator-tunable EGDE settings.
type Config struct {
	Server     ServerConfig      `json:"server" yaml:"server"`
	Cycle      CycleConfig       `json:"cycle" yaml:"cycle"`
	Decision   DecisionConfig    `json:"decision" yaml:"decision"`
	Mutation   MutationRates     `json:"mutation" yaml:"mutation"`
	Cache      CacheConfig       `json:"cache" yaml:"cache"`
	Thresholds BalanceThresholds `json:"thresholds" yaml:"thresholds"`

	// CatalogueOverridePath, if set, names a TOML file of strategy
	// definitions that replaces strategy.Catalogue at startup.
	CatalogueOverridePath string `json:"catalogueOverridePath,omitempty" yaml:"catalogueOverridePath,omitempty"`
}

// ServerConfig holds process-level settings.
type ServerConfig struct {
	DataDir  string `json:"dataDir" yaml:"dataDir"`
	LogLevel string `json:"logLevel" yaml:"logLevel"`
}

// CycleConfig drives the survival loop's tick interval (spec.md §4.10)
// and the daily inscription boundary.
type CycleConfig struct {
	// FastIntervalSec applies when the cycle_speed gene expresses > 0.7.
	FastIntervalSec int `json:"fastIntervalSec" yaml:"fastIntervalSec"`
	// NormalIntervalSec is the default band.
	NormalIntervalSec int `json:"normalIntervalSec" yaml:"normalIntervalSec"`
	// SlowIntervalSec applies when cycle_speed expresses < 0.3.
	SlowIntervalSec int `json:"slowIntervalSec" yaml:"slowIntervalSec"`
	// DailyInscribeUTCHour is the hour (0-23 UTC) the daily inscription
	// timer fires.
	DailyInscribeUTCHour int `json:"dailyInscribeUtcHour" yaml:"dailyInscribeUtcHour"`
}

// DecisionConfig bounds the decision engine (spec.md §4.9, §5).
type DecisionConfig struct {
	MinDecisionIntervalSec int     `json:"minDecisionIntervalSec" yaml:"minDecisionIntervalSec"`
	MaxDeliberationSec     int     `json:"maxDeliberationSec" yaml:"maxDeliberationSec"`
	Temperature            float64 `json:"temperature" yaml:"temperature"`
	MaxTokens              int     `json:"maxTokens" yaml:"maxTokens"`
}

// MutationRates is the contractual default rate table for every
// genetic operator (spec.md §6).
type MutationRates struct {
	Point                    float64 `json:"point" yaml:"point"`
	Large                    float64 `json:"large" yaml:"large"`
	Weight                   float64 `json:"weight" yaml:"weight"`
	Duplication              float64 `json:"duplication" yaml:"duplication"`
	Deletion                 float64 `json:"deletion" yaml:"deletion"`
	StarvationDeletion       float64 `json:"starvationDeletion" yaml:"starvationDeletion"`
	DeNovo                   float64 `json:"deNovo" yaml:"deNovo"`
	HGT                      float64 `json:"hgt" yaml:"hgt"`
	Inversion                float64 `json:"inversion" yaml:"inversion"`
	Translocation            float64 `json:"translocation" yaml:"translocation"`
	Conversion               float64 `json:"conversion" yaml:"conversion"`
	RegulatoryAdd            float64 `json:"regulatoryAdd" yaml:"regulatoryAdd"`
	RegulatoryDelete         float64 `json:"regulatoryDelete" yaml:"regulatoryDelete"`
	RegulatoryModify         float64 `json:"regulatoryModify" yaml:"regulatoryModify"`
	PointSigma               float64 `json:"pointSigma" yaml:"pointSigma"`
	ChromosomeLevelCrossover float64 `json:"chromosomeLevelCrossover" yaml:"chromosomeLevelCrossover"`
	ExtraGeneInheritance     float64 `json:"extraGeneInheritance" yaml:"extraGeneInheritance"`
}

// CacheConfig sizes the expression cache (spec.md §4.4).
type CacheConfig struct {
	MaxSize            int `json:"maxSize" yaml:"maxSize"`
	TTLSec             int `json:"ttlSec" yaml:"ttlSec"`
	CleanupIntervalSec int `json:"cleanupIntervalSec" yaml:"cleanupIntervalSec"`
}

// BalanceThresholds are the USDC/ETH bands that drive mode transitions
// (spec.md §4.10 step 2).
type BalanceThresholds struct {
	Low         float64 `json:"low" yaml:"low"`
	Emergency   float64 `json:"emergency" yaml:"emergency"`
	Critical    float64 `json:"critical" yaml:"critical"`
	Hibernation float64 `json:"hibernation" yaml:"hibernation"`
	MinGasETH   float64 `json:"minGasEth" yaml:"minGasEth"`
}

// DefaultConfig returns the contractual defaults named in spec.md §6.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			DataDir:  "./data",
			LogLevel: "info",
		},
		Cycle: CycleConfig{
			FastIntervalSec:      300,
			NormalIntervalSec:    600,
			SlowIntervalSec:      1800,
			DailyInscribeUTCHour: 0,
		},
		Decision: DecisionConfig{
			MinDecisionIntervalSec: 60,
			MaxDeliberationSec:     30,
			Temperature:            0.7,
			MaxTokens:              2000,
		},
		Mutation: MutationRates{
			Point:                    0.05,
			Large:                    0.0025,
			Weight:                   0.05,
			Duplication:              0.03,
			Deletion:                 0.02,
			StarvationDeletion:       0.15,
			DeNovo:                   0.005,
			HGT:                      0.05,
			Inversion:                0.005,
			Translocation:            0.002,
			Conversion:               0.002,
			RegulatoryAdd:            0.02,
			RegulatoryDelete:         0.02,
			RegulatoryModify:         0.05,
			PointSigma:               0.08,
			ChromosomeLevelCrossover: 0.7,
			ExtraGeneInheritance:     0.5,
		},
		Cache: CacheConfig{
			MaxSize:            1000,
			TTLSec:             60,
			CleanupIntervalSec: 300,
		},
		Thresholds: BalanceThresholds{
			Low:         5,
			Emergency:   2,
			Critical:    1,
			Hibernation: 0.5,
			MinGasETH:   0.001,
		},
	}
}

// Load reads JSON config from path, overlaying it on DefaultConfig so
// an omitted field keeps its contractual default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := os.MkdirAll(cfg.Server.DataDir, 0750); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	return cfg, nil
}

// Save writes config to a JSON file, creating parent directories.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0640)
}

// LoadYAML is Load's YAML-flavored counterpart, for deployments that
// keep their config alongside the genesis/catalogue override fixtures
// (also YAML/TOML) rather than JSON.
func LoadYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := os.MkdirAll(cfg.Server.DataDir, 0750); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	return cfg, nil
}

// SaveYAML is Save's YAML-flavored counterpart.
func (c *Config) SaveYAML(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0640)
}
