// Package config holds runtime configuration for the report generator:
// a YAML configuration file for paths and institution strings, and a
// separate flat YAML dictionary of user field values.
package config

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/goreport/internal/scaffold"
	"github.com/hyperifyio/goreport/internal/substitute"
)

// Config is the runtime configuration. Zero fields fall back to the
// defaults from Default.
type Config struct {
	// AssetDir holds the figure images (Fig {chapter}.{index}.{ext}) and
	// institution logos.
	AssetDir string `yaml:"assetDir"`
	// OutputPath is where the native-format document is saved.
	OutputPath string `yaml:"output"`
	// PDFPath is where the optional PDF preview is written.
	PDFPath string `yaml:"outputPDF"`
	// ManifestPath is where the sidecar run manifest is written; empty
	// disables it.
	ManifestPath string `yaml:"manifest"`
	EnablePDF    bool   `yaml:"enablePDF"`

	// Chapters fixes the chapter count; zero derives it from the field
	// keys.
	Chapters int `yaml:"chapters"`

	Boilerplate scaffold.Boilerplate  `yaml:"institution"`
	Transforms  substitute.Transforms `yaml:"departments"`

	Verbose bool `yaml:"verbose"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		AssetDir:     "assets",
		OutputPath:   "reports/report.docx",
		PDFPath:      "reports/report.pdf",
		ManifestPath: "reports/report.manifest.json",
		Boilerplate:  scaffold.DefaultBoilerplate(),
		Transforms:   substitute.DefaultTransforms(),
	}
}

// Load reads a YAML configuration file and merges it over the defaults:
// only keys present in the file override. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.fillDefaults()
	return cfg, nil
}

// fillDefaults restores defaults for fields the file nulled out.
func (c *Config) fillDefaults() {
	d := Default()
	if c.AssetDir == "" {
		c.AssetDir = d.AssetDir
	}
	if c.OutputPath == "" {
		c.OutputPath = d.OutputPath
	}
	if c.PDFPath == "" {
		c.PDFPath = d.PDFPath
	}
	if c.Boilerplate == (scaffold.Boilerplate{}) {
		c.Boilerplate = d.Boilerplate
	}
	if len(c.Transforms.ShortForms) == 0 {
		c.Transforms.ShortForms = d.Transforms.ShortForms
	}
	if len(c.Transforms.HODNames) == 0 {
		c.Transforms.HODNames = d.Transforms.HODNames
	}
}

// LoadFields reads the flat field dictionary: a YAML mapping of field
// name to value. Multi-line values (the name and roll-number list, the
// chapter bodies) use YAML block scalars.
func LoadFields(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: fields: %w", err)
	}
	out := make(map[string]string)
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("config: parse fields %s: %w", path, err)
	}
	return out, nil
}
