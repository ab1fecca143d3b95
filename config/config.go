// Package config loads the code generation settings from .vktools.yml.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/vksamples/vktools/registry"
)

// DefaultFilenames are the config file names FindConfigFile looks for, in
// order of preference.
var DefaultFilenames = []string{".vktools.yml", "vktools.yml", ".vktools.yaml", "vktools.yaml"}

// Config represents the config file.
type Config struct {
	Registry         string           `yaml:"registry"`
	API              string           `yaml:"api,omitempty"`
	Copyright        string           `yaml:"copyright,omitempty"`
	Versions         string           `yaml:"versions,omitempty"`
	EmitVersions     string           `yaml:"emit_versions,omitempty"`
	AddExtensions    string           `yaml:"add_extensions,omitempty"`
	EmitExtensions   string           `yaml:"emit_extensions,omitempty"`
	RemoveExtensions string           `yaml:"remove_extensions,omitempty"`
	Generators       GeneratorsConfig `yaml:"generators"`
}

// GeneratorsConfig selects the headers to generate. A generator runs only when
// it has a filename.
type GeneratorsConfig struct {
	StructureType StructureTypeConfig `yaml:"structuretype,omitempty"`
	Encoder       OutputConfig        `yaml:"encoder,omitempty"`
}

// StructureTypeConfig configures structure_type_helpers.hpp.
type StructureTypeConfig struct {
	OutputConfig `yaml:",inline"`
	// Inline marks every get_structure_type specialization inline so the
	// header can be included from several translation units.
	Inline bool `yaml:"inline,omitempty"`
}

// OutputConfig configures a single generated file.
type OutputConfig struct {
	Filename string `yaml:"filename,omitempty"`
}

// IsDefined reports whether the output is enabled.
func (c OutputConfig) IsDefined() bool {
	return c.Filename != ""
}

// LoadConfig loads and parses the config file. Relative paths in the config
// are resolved against the directory of the config file.
func LoadConfig(configFilename string) (*Config, error) {
	configContent, err := os.ReadFile(configFilename)
	if err != nil {
		return nil, fmt.Errorf("unable to read config: %w", err)
	}

	var c Config

	yamlDecoder := yaml.NewDecoder(bytes.NewReader([]byte(os.ExpandEnv(string(configContent)))), yaml.DisallowUnknownField())
	if err := yamlDecoder.Decode(&c); err != nil {
		return nil, fmt.Errorf("unable to parse config: %w", err)
	}

	// defaults
	if c.API == "" {
		c.API = "vulkan"
	}
	if c.Versions == "" {
		c.Versions = ".*"
	}
	if c.EmitVersions == "" {
		c.EmitVersions = ".*"
	}

	// validation
	if c.Registry == "" {
		return nil, errors.New("'registry' is not specified. Set it to the path of vk.xml")
	}

	if !c.Generators.StructureType.IsDefined() && !c.Generators.Encoder.IsDefined() {
		return nil, errors.New("no generator specified. Set 'generators.structuretype.filename' or 'generators.encoder.filename'")
	}

	if err := c.Options().Validate(); err != nil {
		return nil, fmt.Errorf("invalid feature selection: %w", err)
	}

	dir := filepath.Dir(configFilename)
	c.Registry = resolve(dir, c.Registry)
	c.Generators.StructureType.Filename = resolve(dir, c.Generators.StructureType.Filename)
	c.Generators.Encoder.Filename = resolve(dir, c.Generators.Encoder.Filename)

	if c.Generators.StructureType.IsDefined() && c.Generators.Encoder.IsDefined() &&
		filepath.Clean(c.Generators.StructureType.Filename) == filepath.Clean(c.Generators.Encoder.Filename) {
		return nil, errors.New("'structuretype' and 'encoder' must not write the same file")
	}

	return &c, nil
}

// Options returns the feature selection described by the config.
func (c *Config) Options() registry.Options {
	return registry.Options{
		APIName:          c.API,
		Versions:         c.Versions,
		EmitVersions:     c.EmitVersions,
		AddExtensions:    c.AddExtensions,
		EmitExtensions:   c.EmitExtensions,
		RemoveExtensions: c.RemoveExtensions,
	}
}

// FindConfigFile searches dir and its parents for the first of filenames.
func FindConfigFile(dir string, filenames []string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("unable to resolve %s: %w", dir, err)
	}

	for {
		for _, name := range filenames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("unable to find any of %v", filenames)
		}
		dir = parent
	}
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
