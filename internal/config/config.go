// Package config loads changelogbump settings using koanf.
// Priority: command-line overrides > environment (CHANGELOGBUMP_*) >
// project config file (.changelogbump.yaml) > defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	changelogbump "github.com/bcomnes/changelogbump/pkg"
)

// EnvPrefix prefixes every environment override. Nested keys use a double
// underscore: CHANGELOGBUMP_GIT__TAG_PREFIX sets git.tag_prefix.
const EnvPrefix = "CHANGELOGBUMP_"

// ProjectConfigNames are the file names searched for in the project directory.
var ProjectConfigNames = []string{".changelogbump.yaml", ".changelogbump.yml", ".changelogbump.json"}

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Configuration is the merged changelogbump configuration.
type Configuration struct {
	Manifest  ManifestConfig  `koanf:"manifest"`
	Changelog ChangelogConfig `koanf:"changelog"`
	Git       GitConfig       `koanf:"git"`
	Check     CheckConfig     `koanf:"check"`

	// Source is the project config file that was loaded, if any.
	Source string `koanf:"-"`
}

type ManifestConfig struct {
	Path   string `koanf:"path"`
	Key    string `koanf:"key"`
	Format string `koanf:"format"`
}

type ChangelogConfig struct {
	Path       string `koanf:"path"`
	Header     string `koanf:"header"`
	DateFormat string `koanf:"date_format"`
	AllowEmpty bool   `koanf:"allow_empty"`
}

type GitConfig struct {
	Commit    bool   `koanf:"commit"`
	Tag       bool   `koanf:"tag"`
	TagPrefix string `koanf:"tag_prefix"`
}

type CheckConfig struct {
	Sources     []string      `koanf:"sources"`
	PyPIPackage string        `koanf:"pypi_package"`
	Timeout     time.Duration `koanf:"timeout"`
}

// LoadOptions control where configuration is read from.
type LoadOptions struct {
	// ConfigPath is an explicit config file. It must exist when set.
	ConfigPath string
	// Dir is searched for ProjectConfigNames when ConfigPath is empty.
	// Defaults to the working directory.
	Dir string
	// Overrides are applied last, keyed like "git.commit". The CLI passes
	// the flags the user actually set.
	Overrides map[string]interface{}
}

// Load reads configuration with default options.
func Load() (*Configuration, error) {
	return LoadWithOptions(LoadOptions{})
}

// LoadWithOptions merges defaults, the project file, the environment and
// overrides, then validates the result.
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")

	for key, value := range GetDefaults() {
		k.Set(key, value)
	}

	path, err := findProjectConfig(opts)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := loadProjectConfig(k, path); err != nil {
			return nil, err
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment config: %w", err)
	}

	for key, value := range opts.Overrides {
		k.Set(key, value)
	}

	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	cfg.Source = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func findProjectConfig(opts LoadOptions) (string, error) {
	if opts.ConfigPath != "" {
		if _, err := os.Stat(opts.ConfigPath); err != nil {
			return "", fmt.Errorf("config file %s: %w", opts.ConfigPath, err)
		}
		return opts.ConfigPath, nil
	}
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	for _, name := range ProjectConfigNames {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", nil
}

// loadProjectConfig validates the file against the schema on its own, so
// unknown keys and wrong types are reported with the file name, then merges it.
func loadProjectConfig(k *koanf.Koanf, path string) error {
	var parser koanf.Parser = yaml.Parser()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		parser = json.Parser()
	}

	fileK := koanf.New(".")
	if err := fileK.Load(file.Provider(path), parser); err != nil {
		return fmt.Errorf("%w: loading %s: %v", ErrInvalidConfig, path, err)
	}
	if err := ValidateDocument(fileK.Raw()); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	if err := k.Merge(fileK); err != nil {
		return fmt.Errorf("merging %s: %w", path, err)
	}
	return nil
}

// envTransform maps CHANGELOGBUMP_GIT__TAG_PREFIX to git.tag_prefix.
func envTransform(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// Validate checks values that the schema cannot see, such as ones set through
// the environment or flags.
func (c *Configuration) Validate() error {
	if strings.TrimSpace(c.Manifest.Path) == "" {
		return fmt.Errorf("%w: manifest.path must not be empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Changelog.Path) == "" {
		return fmt.Errorf("%w: changelog.path must not be empty", ErrInvalidConfig)
	}
	if _, err := changelogbump.ParseFormat(c.Manifest.Format); err != nil {
		return fmt.Errorf("%w: manifest.format: %v", ErrInvalidConfig, err)
	}
	if strings.TrimSpace(c.Changelog.DateFormat) == "" {
		return fmt.Errorf("%w: changelog.date_format must not be empty", ErrInvalidConfig)
	}
	for _, src := range c.Check.Sources {
		if src != "git" && src != "pypi" {
			return fmt.Errorf("%w: check.sources: unknown source %q (want git or pypi)", ErrInvalidConfig, src)
		}
	}
	if c.Check.Timeout <= 0 {
		return fmt.Errorf("%w: check.timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// ManifestSpec returns the manifest accessor described by the configuration.
func (c *Configuration) ManifestSpec() changelogbump.Manifest {
	format, _ := changelogbump.ParseFormat(c.Manifest.Format)
	return changelogbump.Manifest{Path: c.Manifest.Path, Key: c.Manifest.Key, Format: format}
}

// HeaderText returns the text init writes: the configured header file, or the
// bundled default.
func (c *Configuration) HeaderText() (string, error) {
	if c.Changelog.Header == "" {
		return changelogbump.DefaultHeader(), nil
	}
	data, err := os.ReadFile(c.Changelog.Header)
	if err != nil {
		return "", fmt.Errorf("reading header file %s: %w", c.Changelog.Header, err)
	}
	return string(data), nil
}
