// Package config provides configuration management for scmrev.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Default configuration values.
const (
	DefaultConfigDir  = ".config/scmrev"
	DefaultConfigFile = "config.yaml"
	DefaultOutput     = "./defaultconfig/scmrev.h"
)

// defaultCandidates mirrors git.DefaultCandidates; config stays free of
// domain imports.
var defaultCandidates = []string{"git.cmd", "git", "git.bat"}

// validate is the shared validator instance.
var validate = validator.New()

// Config represents the full scmrev configuration.
type Config struct {
	Output string    `mapstructure:"output" validate:"required"`
	Git    GitConfig `mapstructure:"git"`
}

// GitConfig controls how git is located and where it runs.
type GitConfig struct {
	// Command is a preconfigured git executable or command line.
	Command string `mapstructure:"command"`
	// Candidates are command names tried on PATH, in order.
	Candidates []string `mapstructure:"candidates" validate:"required,min=1,dive,required"`
	// SearchPaths are extra install locations checked last.
	SearchPaths []string `mapstructure:"search_paths" validate:"dive,required"`
	// Dir is the working directory for git queries.
	Dir string `mapstructure:"dir"`
}

// Validate checks the configuration for errors using struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// Loader reads configuration from an optional YAML file and the environment.
type Loader struct {
	v    *viper.Viper
	path string
}

// NewLoader creates a configuration loader. An empty path selects
// $SCMREV_CONFIG, then ~/.config/scmrev/config.yaml.
func NewLoader(path string) (*Loader, error) {
	if path == "" {
		path = os.Getenv("SCMREV_CONFIG")
	}
	if path == "" {
		home, err := homedir.Dir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		path = filepath.Join(home, DefaultConfigDir, DefaultConfigFile)
	}

	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expand config path: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(expanded)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("SCMREV")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("output", "SCMREV_OUTPUT")
	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("git.command", "SCMREV_GIT_COMMAND")

	l := &Loader{v: v, path: expanded}
	l.setDefaults()

	return l, nil
}

// setDefaults sets all default configuration values using Viper.
func (l *Loader) setDefaults() {
	l.v.SetDefault("output", DefaultOutput)
	l.v.SetDefault("git.command", "")
	l.v.SetDefault("git.candidates", defaultCandidates)
	l.v.SetDefault("git.search_paths", []string{})
	l.v.SetDefault("git.dir", "")
}

// Load reads the configuration. A missing file is not an error: defaults and
// environment variables apply. The file is never created.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Output = expandPath(cfg.Output)
	cfg.Git.Dir = expandPath(cfg.Git.Dir)
	for i, p := range cfg.Git.SearchPaths {
		cfg.Git.SearchPaths[i] = expandPath(p)
	}

	return &cfg, nil
}

// Path returns the configuration file path.
func (l *Loader) Path() string {
	return l.path
}

// expandPath replaces a leading ~ with the home directory, leaving the path
// unchanged if the home directory is unknown.
func expandPath(path string) string {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return expanded
}
