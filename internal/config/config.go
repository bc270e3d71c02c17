package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/glycoscope/internal/charts"
	"github.com/KaramelBytes/glycoscope/internal/outliers"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	OutputDir    string `mapstructure:"output_dir" yaml:"output_dir"`
	TargetColumn string `mapstructure:"target_column" yaml:"target_column"`
	TopK         int    `mapstructure:"top_k" yaml:"top_k"`
	// Chart rendering
	ChartFormat   string  `mapstructure:"chart_format" yaml:"chart_format"`
	ChartWidthIn  float64 `mapstructure:"chart_width_in" yaml:"chart_width_in"`
	ChartHeightIn float64 `mapstructure:"chart_height_in" yaml:"chart_height_in"`
	// Viewer is run with each chart path after saving; empty disables display.
	Viewer    string `mapstructure:"viewer" yaml:"viewer"`
	WriteXLSX bool   `mapstructure:"write_xlsx" yaml:"write_xlsx"`
	// ValidRanges overrides the built-in range table when non-empty.
	ValidRanges outliers.Ranges `mapstructure:"valid_ranges" yaml:"valid_ranges,omitempty"`
}

// Keys lists the scalar settings `config set` accepts.
var Keys = []string{
	"output_dir", "target_column", "top_k", "chart_format",
	"chart_width_in", "chart_height_in", "viewer", "write_xlsx",
}

// DefaultPath returns ~/.glycoscope/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".glycoscope", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.glycoscope/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
// A .env file in the working directory is loaded first; variables already set
// in the environment win over it.
func Load(cfgFile string) (*Global, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GLYCOSCOPE")
	v.AutomaticEnv()

	v.SetDefault("output_dir", "results")
	v.SetDefault("target_column", "diabetes_risk_score")
	v.SetDefault("top_k", 5)
	v.SetDefault("chart_format", "png")
	v.SetDefault("chart_width_in", 10.0)
	v.SetDefault("chart_height_in", 6.0)
	v.SetDefault("viewer", "")
	v.SetDefault("write_xlsx", false)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".glycoscope"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects settings the pipeline cannot honour.
func (c *Global) Validate() error {
	if c.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", c.TopK)
	}
	c.ChartFormat = strings.ToLower(c.ChartFormat)
	if !charts.ValidFormat(c.ChartFormat) {
		return fmt.Errorf("chart_format %q not supported (use one of %s)", c.ChartFormat, strings.Join(charts.Formats, ", "))
	}
	if c.ValidRanges != nil {
		if err := c.ValidRanges.Validate(); err != nil {
			return fmt.Errorf("valid_ranges: %w", err)
		}
	}
	return nil
}

// Ranges returns the configured valid-range table, falling back to the built-in one.
func (c *Global) Ranges() outliers.Ranges {
	if len(c.ValidRanges) > 0 {
		return c.ValidRanges
	}
	return outliers.DefaultRanges()
}

// ChartOptions maps the rendering settings onto chart options.
func (c *Global) ChartOptions() charts.Options {
	return charts.Options{
		OutputDir: c.OutputDir,
		Format:    c.ChartFormat,
		WidthIn:   c.ChartWidthIn,
		HeightIn:  c.ChartHeightIn,
		Viewer:    c.Viewer,
	}
}
