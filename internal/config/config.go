// Package config owns the YAML configuration file that drives a run. The
// loaded value is immutable after validation and passed explicitly into
// component constructors; there is no ambient config state.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/paperlift/paperlift/pkg/logging"
	"github.com/paperlift/paperlift/pkg/preprocess"
	"github.com/paperlift/paperlift/pkg/rasterize"
	"github.com/paperlift/paperlift/pkg/recognize"
)

// ConfigurationError reports an invalid or missing option. It is fatal:
// the batch never starts on one.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration %s: %s", e.Key, e.Reason)
}

// Postprocessing toggles text normalization after recognition.
type Postprocessing struct {
	Enabled bool `yaml:"enabled"`
}

// Config is the complete configuration for one batch run.
type Config struct {
	InputDir     string `yaml:"input_dir"`
	OutputDir    string `yaml:"output_dir"`
	OutputFormat string `yaml:"output_format"`

	OCR            recognize.Config  `yaml:"ocr"`
	PDF            rasterize.Config  `yaml:"pdf"`
	Preprocessing  preprocess.Config `yaml:"preprocessing"`
	Postprocessing Postprocessing    `yaml:"postprocessing"`
	Logging        logging.Config    `yaml:"logging"`
}

// Default returns the configuration used when the file omits a key.
func Default() *Config {
	return &Config{
		InputDir:       "input",
		OutputDir:      "output",
		OutputFormat:   "json",
		OCR:            recognize.DefaultConfig(),
		PDF:            rasterize.DefaultConfig(),
		Preprocessing:  preprocess.DefaultConfig(),
		Postprocessing: Postprocessing{Enabled: true},
		Logging:        logging.DefaultConfig(),
	}
}

// Load reads the YAML file at path over the defaults. Keys absent from
// the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{Key: "config", Reason: fmt.Sprintf("reading %s: %v", path, err)}
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &ConfigurationError{Key: "config", Reason: fmt.Sprintf("parsing %s: %v", path, err)}
	}
	return cfg, nil
}

// Validate checks every option and names the offending key. It must pass
// before any processing starts.
func (c *Config) Validate() error {
	if c.InputDir == "" {
		return &ConfigurationError{Key: "input_dir", Reason: "must be set"}
	}
	info, err := os.Stat(c.InputDir)
	if err != nil {
		return &ConfigurationError{Key: "input_dir", Reason: fmt.Sprintf("%s: %v", c.InputDir, err)}
	}
	if !info.IsDir() {
		return &ConfigurationError{Key: "input_dir", Reason: fmt.Sprintf("%s is not a directory", c.InputDir)}
	}
	if c.OutputDir == "" {
		return &ConfigurationError{Key: "output_dir", Reason: "must be set"}
	}
	if strings.ToLower(c.OutputFormat) != "json" {
		return &ConfigurationError{Key: "output_format", Reason: fmt.Sprintf("%q is not supported, only \"json\"", c.OutputFormat)}
	}
	if err := c.OCR.Validate(); err != nil {
		return &ConfigurationError{Key: "ocr", Reason: err.Error()}
	}
	if err := c.PDF.Validate(); err != nil {
		return &ConfigurationError{Key: "pdf", Reason: err.Error()}
	}
	if err := c.Preprocessing.Validate(); err != nil {
		return &ConfigurationError{Key: "preprocessing", Reason: err.Error()}
	}
	if err := c.Logging.Validate(); err != nil {
		return &ConfigurationError{Key: "logging", Reason: err.Error()}
	}
	return nil
}
