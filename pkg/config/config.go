// Package config loads identifier settings from .swhid.toml or .swhid.yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/odvcencio/swhid/pkg/codec"
	"github.com/odvcencio/swhid/pkg/identify"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// FileNames are the config files looked up by LoadDir, in order.
var FileNames = []string{".swhid.toml", ".swhid.yaml", ".swhid.yml"}

// Config holds the settings shared by every identify run.
type Config struct {
	Exclude        []string `toml:"exclude" yaml:"exclude"`
	FollowSymlinks bool     `toml:"follow_symlinks" yaml:"follow_symlinks"`
	Decompress     string   `toml:"decompress" yaml:"decompress"`
	LogLevel       string   `toml:"log_level" yaml:"log_level"`
	LogFormat      string   `toml:"log_format" yaml:"log_format"`
}

// Default returns the settings used when no config file exists.
func Default() *Config {
	return &Config{
		LogLevel:  "warning",
		LogFormat: "text",
	}
}

// Load reads the config file at path, choosing TOML or YAML by extension.
// A missing file returns Default().
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, fmt.Errorf("read config: unmarshal: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			sort.Strings(keys)
			return nil, fmt.Errorf("read config: unknown keys %s", strings.Join(keys, ", "))
		}
	case ".yaml", ".yml":
		if err := yaml.UnmarshalStrict(data, cfg); err != nil {
			return nil, fmt.Errorf("read config: unmarshal: %w", err)
		}
	default:
		return nil, fmt.Errorf("read config: unsupported extension %q", ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return cfg, nil
}

// Find returns the first of FileNames present in dir.
func Find(dir string) (string, bool) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, true
		}
	}
	return "", false
}

// LoadDir loads the config file found in dir, or Default() when there is
// none.
func LoadDir(dir string) (*Config, error) {
	path, ok := Find(dir)
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks the enumerated fields and the exclude patterns.
func (c *Config) Validate() error {
	if _, err := codec.ParseFormat(c.Decompress); err != nil {
		return err
	}
	if c.LogLevel != "" {
		if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
			return err
		}
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	if _, err := identify.NewExcluder(c.Exclude); err != nil {
		return err
	}
	return nil
}

// Options converts the config into identify options. logger may be nil.
func (c *Config) Options(logger logrus.FieldLogger) ([]identify.Option, error) {
	format, err := codec.ParseFormat(c.Decompress)
	if err != nil {
		return nil, err
	}
	opts := []identify.Option{
		identify.WithFollowSymlinks(c.FollowSymlinks),
		identify.WithExcludePatterns(c.Exclude),
		identify.WithDecompression(format),
	}
	if logger != nil {
		opts = append(opts, identify.WithLogger(logger))
	}
	return opts, nil
}

// NewLogger builds a logrus logger writing to stderr at the configured
// level and format.
func (c *Config) NewLogger() (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	level := logrus.WarnLevel
	if c.LogLevel != "" {
		var err error
		level, err = logrus.ParseLevel(c.LogLevel)
		if err != nil {
			return nil, err
		}
	}
	logger.SetLevel(level)
	if c.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	return logger, nil
}
