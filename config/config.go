package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/JimSP/jimfs"
	"github.com/JimSP/jimfs/internal/util"
	"github.com/JimSP/jimfs/pathtype"
)

// CLI verbosity levels accepted by [ConfigOverride.LogLvl]
const (
	ErrorVerbose = iota + 1
	WarnVerbose
	InfoVerbose
	DebugVerbose
	TraceVerbose
)

// Root table kinds
const (
	RootTableHash         = "hash"
	RootTableOrdered      = "ordered"
	RootTableSynchronized = "synchronized"
)

// Default configuration constants. See [Config] for field descriptions.
const (
	DefaultPathType         = "unix"
	DefaultWorkingDirectory = "/work"
	DefaultMaxSymlinkDepth  = 40
	DefaultRootTable        = RootTableHash
	DefaultLogLvl           = util.WarnLevel
)

// DefaultName is empty so that [NewConfig] assigns a random uuid name
const DefaultName = ""

// Config is the immutable description of one filesystem instance.
type Config struct {
	Name                string          // Instance name used as the URI host (Default random uuid)
	PathType            string          // Path syntax preset: "unix", "osx" or "windows" (Default unix)
	Roots               []string        // Root directory strings; more than one requires a multi-root path type (Default ["/"])
	WorkingDirectory    string          // Absolute path relative paths resolve against; created on startup (Default /work)
	LookupNormalization []string        // Overrides the preset's lookup normalization when non-nil
	PathNormalization   []string        // Overrides the preset's path normalization when non-nil
	Features            []jimfs.Feature // Enabled optional features (Default links, symbolic_links)
	MaxSymlinkDepth     int             // Symbolic links followed in one resolution before a cycle is reported (Default 40)
	RootTable           string          // Root table implementation: hash, ordered or synchronized (Default hash)
	LogLvl              util.LogLevel   // Logger level for CLI use (Default warn)
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
type ConfigOverride struct {
	Name                *string          `yaml:"name,omitempty" json:"name,omitempty"`
	PathType            *string          `yaml:"path_type,omitempty" json:"path_type,omitempty"`
	Roots               *[]string        `yaml:"roots,omitempty" json:"roots,omitempty"`
	WorkingDirectory    *string          `yaml:"working_directory,omitempty" json:"working_directory,omitempty"`
	LookupNormalization *[]string        `yaml:"lookup_normalization,omitempty" json:"lookup_normalization,omitempty"`
	PathNormalization   *[]string        `yaml:"path_normalization,omitempty" json:"path_normalization,omitempty"`
	Features            *[]jimfs.Feature `yaml:"features,omitempty" json:"features,omitempty"`
	MaxSymlinkDepth     *int             `yaml:"max_symlink_depth,omitempty" json:"max_symlink_depth,omitempty"`
	RootTable           *string          `yaml:"root_table,omitempty" json:"root_table,omitempty"`
	// LogLvl is a CLI style verbosity, 1 (error) to 5 (trace)
	LogLvl *int `yaml:"log_level,omitempty" json:"log_level,omitempty"`
}

// NewDefaultConfig creates a new Unix-like Config with all default values.
// The name is left empty; see [NewConfig].
func NewDefaultConfig() *Config {
	return &Config{
		Name:             DefaultName,
		PathType:         DefaultPathType,
		Roots:            []string{"/"},
		WorkingDirectory: DefaultWorkingDirectory,
		Features:         []jimfs.Feature{jimfs.FeatureLinks, jimfs.FeatureSymbolicLinks},
		MaxSymlinkDepth:  DefaultMaxSymlinkDepth,
		RootTable:        DefaultRootTable,
		LogLvl:           DefaultLogLvl,
	}
}

// NewConfig returns the defaults with override applied. A config left
// without a name gets a random uuid.
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	if cfg.Name == "" {
		cfg.Name = uuid.NewString()
	}
	return cfg
}

// NewUnixConfig returns a Unix-like configuration: root "/", working
// directory "/work", hard and symbolic links enabled.
func NewUnixConfig() *Config {
	return NewDefaultConfig()
}

// NewOSXConfig returns a Mac OS X-like configuration. It matches the Unix one
// except for the path type's normalization.
func NewOSXConfig() *Config {
	cfg := NewDefaultConfig()
	cfg.PathType = "osx"
	return cfg
}

// NewWindowsConfig returns a Windows-like configuration: root "C:\", working
// directory "C:\work", symbolic links enabled but hard links disabled.
func NewWindowsConfig() *Config {
	cfg := NewDefaultConfig()
	cfg.PathType = "windows"
	cfg.Roots = []string{`C:\`}
	cfg.WorkingDirectory = `C:\work`
	cfg.Features = []jimfs.Feature{jimfs.FeatureSymbolicLinks}
	return cfg
}

// NewPresetConfig returns the preset configuration for a path type name
func NewPresetConfig(pathType string) (*Config, error) {
	switch strings.ToLower(pathType) {
	case "unix", "":
		return NewUnixConfig(), nil
	case "osx", "macos":
		return NewOSXConfig(), nil
	case "windows":
		return NewWindowsConfig(), nil
	}
	return nil, errors.Wrapf(jimfs.ErrConfiguration, "unknown path type %q", pathType)
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
//
// A PathType override first resets roots, working directory, normalizations
// and features to that preset's values; explicit overrides of those fields
// are applied afterwards.
func (c *Config) Merge(override *ConfigOverride) {
	if override.PathType != nil {
		if preset, err := NewPresetConfig(*override.PathType); err == nil {
			c.Roots = preset.Roots
			c.WorkingDirectory = preset.WorkingDirectory
			c.Features = preset.Features
			c.LookupNormalization = nil
			c.PathNormalization = nil
		}
		// unknown names are kept verbatim and rejected by Validate
		c.PathType = *override.PathType
	}
	if override.Name != nil {
		c.Name = *override.Name
	}
	if override.Roots != nil {
		c.Roots = slices.Clone(*override.Roots)
	}
	if override.WorkingDirectory != nil {
		c.WorkingDirectory = *override.WorkingDirectory
	}
	if override.LookupNormalization != nil {
		c.LookupNormalization = slices.Clone(*override.LookupNormalization)
	}
	if override.PathNormalization != nil {
		c.PathNormalization = slices.Clone(*override.PathNormalization)
	}
	if override.Features != nil {
		c.Features = slices.Clone(*override.Features)
	}
	if override.MaxSymlinkDepth != nil {
		c.MaxSymlinkDepth = *override.MaxSymlinkDepth
	}
	if override.RootTable != nil {
		c.RootTable = *override.RootTable
	}
	if override.LogLvl != nil {
		c.LogLvl = util.LevelFromVerbosity(*override.LogLvl)
	}
}

// BuildPathType returns the configured path type with any normalization
// overrides applied.
func (c *Config) BuildPathType() (pathtype.PathType, error) {
	pt, err := pathtype.ByName(c.PathType)
	if err != nil {
		return pathtype.PathType{}, err
	}
	if c.LookupNormalization != nil {
		n, err := pathtype.ParseNormalization(c.LookupNormalization...)
		if err != nil {
			return pathtype.PathType{}, errors.Wrap(err, "lookup normalization")
		}
		pt = pt.WithLookupNormalization(n)
	}
	if c.PathNormalization != nil {
		n, err := pathtype.ParseNormalization(c.PathNormalization...)
		if err != nil {
			return pathtype.PathType{}, errors.Wrap(err, "path normalization")
		}
		pt = pt.WithPathNormalization(n)
	}
	return pt, nil
}

// HasFeature reports whether f is enabled
func (c *Config) HasFeature(f jimfs.Feature) bool {
	return slices.Contains(c.Features, f)
}

// Validate checks the configuration before any filesystem state is built.
// All failures wrap jimfs.ErrConfiguration.
func (c *Config) Validate() error {
	pt, err := c.BuildPathType()
	if err != nil {
		return markConfig(err)
	}

	if len(c.Roots) == 0 {
		return configErr("at least one root is required")
	}
	if len(c.Roots) > 1 && !pt.AllowsMultipleRoots() {
		return configErr("path type %s does not allow multiple roots", c.PathType)
	}
	seen := make(map[string]string, len(c.Roots))
	for _, root := range c.Roots {
		res, err := pt.ParsePath(root)
		if err != nil {
			return markConfig(err)
		}
		if !res.IsAbsolute() || len(res.Names) > 0 {
			return configErr("invalid root %q: must be exactly a root", root)
		}
		key := pt.RootName(res.Root).Canonical()
		if prev, dup := seen[key]; dup {
			return configErr("duplicate root %q (same as %q)", root, prev)
		}
		seen[key] = root
	}

	wd, err := pt.ParsePath(c.WorkingDirectory)
	if err != nil {
		return markConfig(err)
	}
	if !wd.IsAbsolute() {
		return configErr("working directory %q must be absolute", c.WorkingDirectory)
	}
	if _, ok := seen[pt.RootName(wd.Root).Canonical()]; !ok {
		return configErr("working directory %q is not on a configured root", c.WorkingDirectory)
	}

	for _, f := range c.Features {
		if f != jimfs.FeatureLinks && f != jimfs.FeatureSymbolicLinks {
			return configErr("unknown feature %q", f)
		}
	}
	if c.MaxSymlinkDepth < 1 {
		return configErr("max symlink depth must be positive, got %d", c.MaxSymlinkDepth)
	}
	switch c.RootTable {
	case RootTableHash, RootTableOrdered, RootTableSynchronized:
	default:
		return configErr("unknown root table %q", c.RootTable)
	}
	return nil
}

func configErr(format string, args ...any) error {
	return errors.Wrapf(jimfs.ErrConfiguration, format, args...)
}

// markConfig makes err also match jimfs.ErrConfiguration
func markConfig(err error) error {
	if errors.Is(err, jimfs.ErrConfiguration) {
		return err
	}
	return fmt.Errorf("%w: %w", jimfs.ErrConfiguration, err)
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &override)
	case ".json":
		err = json.Unmarshal(data, &override)
	default:
		return nil, errors.Wrapf(jimfs.ErrConfiguration, "unknown config file extension %q", ext)
	}
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "decoding %s", path), jimfs.ErrConfiguration)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
// This is a convenience function that combines NewDefaultConfig, LoadConfigOverrideFile, and Merge.
func NewConfigFromFile(path string) (*Config, error) {
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	return NewConfig(override), nil
}
