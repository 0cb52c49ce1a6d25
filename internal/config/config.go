package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete trisk configuration (v1 schema)
type Config struct {
	Version int    `json:"version" mapstructure:"version"`
	DataDir string `json:"dataDir" mapstructure:"dataDir"`

	Analysis AnalysisConfig `json:"analysis" mapstructure:"analysis"`
	Catalog  CatalogConfig  `json:"catalog" mapstructure:"catalog"`
	Scoring  ScoringConfig  `json:"scoring" mapstructure:"scoring"`
	Export   ExportConfig   `json:"export" mapstructure:"export"`
	Logging  LoggingConfig  `json:"logging" mapstructure:"logging"`
}

// AnalysisConfig contains analysis pipeline configuration
type AnalysisConfig struct {
	OverlapWindowDays int `json:"overlapWindowDays" mapstructure:"overlapWindowDays"`
	MaxOverlapRecords int `json:"maxOverlapRecords" mapstructure:"maxOverlapRecords"`
	MaxSharedObjects  int `json:"maxSharedObjects" mapstructure:"maxSharedObjects"`
}

// CatalogConfig contains app catalog configuration
type CatalogConfig struct {
	// Path points at a JSON/YAML/TOML catalog document. Empty means the
	// bundled default catalog.
	Path string `json:"path" mapstructure:"path"`
}

// ScoringConfig contains overrides for the risk scoring heuristics.
// Zero values mean "use the built-in default"; the constants are policy,
// not structure, and may be recalibrated without code changes.
type ScoringConfig struct {
	Scale                 float64        `json:"scale" mapstructure:"scale"`
	CriticalAppMultiplier float64        `json:"criticalAppMultiplier" mapstructure:"criticalAppMultiplier"`
	HighBand              int            `json:"highBand" mapstructure:"highBand"`
	MediumBand            int            `json:"mediumBand" mapstructure:"mediumBand"`
	BasePoints            map[string]int `json:"basePoints" mapstructure:"basePoints"`
}

// ExportConfig contains checklist export configuration
type ExportConfig struct {
	OutDir string `json:"outDir" mapstructure:"outDir"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		DataDir: ".trisk",
		Analysis: AnalysisConfig{
			OverlapWindowDays: 30,
			MaxOverlapRecords: 25,
			MaxSharedObjects:  200,
		},
		Catalog: CatalogConfig{
			Path: "",
		},
		Scoring: ScoringConfig{},
		Export: ExportConfig{
			OutDir: "exports",
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from <root>/.trisk/config.json.
// A missing config file is not an error; defaults are returned.
func LoadConfig(root string) (*Config, error) {
	v := viper.New()

	v.SetDefault("version", 1)
	v.SetDefault("dataDir", ".trisk")
	v.SetDefault("analysis.overlapWindowDays", 30)
	v.SetDefault("analysis.maxOverlapRecords", 25)
	v.SetDefault("analysis.maxSharedObjects", 200)
	v.SetDefault("export.outDir", "exports")
	v.SetDefault("logging.format", "human")
	v.SetDefault("logging.level", "info")

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(root, ".trisk"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to <root>/.trisk/config.json
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, ".trisk")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Analysis.OverlapWindowDays < 0 {
		return &ConfigError{Field: "analysis.overlapWindowDays", Message: "must not be negative"}
	}
	if c.Scoring.MediumBand > 0 && c.Scoring.HighBand > 0 && c.Scoring.MediumBand >= c.Scoring.HighBand {
		return &ConfigError{Field: "scoring.mediumBand", Message: "must be below scoring.highBand"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
