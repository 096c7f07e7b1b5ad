// Package config provides configuration management for transmerge using
// Viper for loading from files, environment variables, and command-line flags.
//
// The configuration names the glob used to discover translation fragments,
// the destination directory for merged files, an optional locale regex, and
// the staging root both paths are relative to. Environment variables use the
// TRANSMERGE_ prefix with dots replaced by underscores, for example
// TRANSMERGE_MERGE_DESTINATION_PATH.
package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/conneroisu/transmerge/internal/errors"
)

// Configuration keys.
const (
	KeySearchGlobPattern = "merge.search_glob_pattern"
	KeyDestinationPath   = "merge.destination_path"
	KeyMatchPattern      = "merge.match_pattern"
	KeyStagingRoot       = "merge.staging_root"
	KeyExclude           = "merge.exclude"
	KeyWatchDebounce     = "watch.debounce"
	KeyLogLevel          = "log.level"
	KeyLogFormat         = "log.format"
)

// Defaults.
const (
	DefaultStagingRoot       = ".gah"
	DefaultSearchGlobPattern = "src/assets/**/translations/*.json"
	DefaultDestinationPath   = "src/assets/i18n"
	DefaultWatchDebounce     = 300 * time.Millisecond
)

// DefaultExclude lists directories skipped during discovery.
var DefaultExclude = []string{"node_modules"}

type Config struct {
	Merge MergeConfig `mapstructure:"merge" yaml:"merge" json:"merge"`
	Watch WatchConfig `mapstructure:"watch" yaml:"watch" json:"watch"`
	Log   LogConfig   `mapstructure:"log" yaml:"log" json:"log"`
}

type MergeConfig struct {
	SearchGlobPattern string   `mapstructure:"search_glob_pattern" yaml:"search_glob_pattern" json:"search_glob_pattern"`
	DestinationPath   string   `mapstructure:"destination_path" yaml:"destination_path" json:"destination_path"`
	MatchPattern      string   `mapstructure:"match_pattern" yaml:"match_pattern,omitempty" json:"match_pattern,omitempty"`
	StagingRoot       string   `mapstructure:"staging_root" yaml:"staging_root" json:"staging_root"`
	Exclude           []string `mapstructure:"exclude" yaml:"exclude" json:"exclude"`
}

type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce" json:"debounce"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// BindEnv registers every key with viper so environment overrides reach
// Unmarshal even when no config file sets the key.
func BindEnv(v *viper.Viper) {
	for _, key := range []string{
		KeySearchGlobPattern, KeyDestinationPath, KeyMatchPattern, KeyStagingRoot,
		KeyExclude, KeyWatchDebounce, KeyLogLevel, KeyLogFormat,
	} {
		_ = v.BindEnv(key)
	}
}

// Load reads the configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads the configuration from v, applies defaults and validates
// the values that are present. Presence of required settings is checked
// separately by MergeConfig.RequirePresent right before a run.
func LoadFrom(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.WrapConfig(err, "CONFIG_DECODE", "cannot decode configuration")
	}

	// Handle exclude set via viper (workaround for viper slice handling)
	if v.IsSet(KeyExclude) && len(config.Merge.Exclude) == 0 {
		config.Merge.Exclude = v.GetStringSlice(KeyExclude)
	}

	applyDefaults(&config, v)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func applyDefaults(config *Config, v *viper.Viper) {
	if config.Merge.StagingRoot == "" {
		config.Merge.StagingRoot = DefaultStagingRoot
	}
	if !v.IsSet(KeyExclude) && len(config.Merge.Exclude) == 0 {
		config.Merge.Exclude = append([]string(nil), DefaultExclude...)
	}
	if config.Watch.Debounce <= 0 {
		config.Watch.Debounce = DefaultWatchDebounce
	}
	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}
}

// RequirePresent fails with a ConfigurationMissing error when a required
// setting is absent.
func (m *MergeConfig) RequirePresent() error {
	if m == nil {
		return errors.NewConfigError(errors.ErrCodeConfigMissing, "Plugin settings have not been provided.")
	}
	if strings.TrimSpace(m.SearchGlobPattern) == "" {
		return errors.NewMissingSettingError("searchGlobPattern")
	}
	if strings.TrimSpace(m.DestinationPath) == "" {
		return errors.NewMissingSettingError("destinationPath")
	}
	return nil
}

// SearchRoot is the directory discovery starts from.
func (m *MergeConfig) SearchRoot() string {
	return m.StagingRoot
}

// Destination is the directory merged files are written to.
func (m *MergeConfig) Destination() string {
	return filepath.Join(m.StagingRoot, m.DestinationPath)
}

// validateConfig validates configuration values for correctness
func validateConfig(config *Config) error {
	if err := validateMergeConfig(&config.Merge); err != nil {
		return fmt.Errorf("merge config: %w", err)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("log config: unsupported format %q", config.Log.Format)
	}

	return nil
}

// validateMergeConfig checks the values that are set. Empty required fields
// are left to RequirePresent.
func validateMergeConfig(config *MergeConfig) error {
	if config.SearchGlobPattern != "" && !strings.HasSuffix(config.SearchGlobPattern, ".json") {
		return errors.NewConfigError(errors.ErrCodeInvalidGlobPattern,
			"search_glob_pattern must match .json files").
			WithContext("pattern", config.SearchGlobPattern)
	}

	if config.MatchPattern != "" {
		if _, err := regexp.Compile(config.MatchPattern); err != nil {
			return errors.WrapConfig(err, errors.ErrCodeInvalidMatchPattern, "match_pattern is not a valid regular expression")
		}
	}

	for name, p := range map[string]string{
		"search_glob_pattern": config.SearchGlobPattern,
		"destination_path":    config.DestinationPath,
	} {
		if p == "" {
			continue
		}
		if filepath.IsAbs(p) {
			return fmt.Errorf("%s must be relative to the staging root: %s", name, p)
		}
		if strings.HasPrefix(filepath.Clean(p), "..") {
			return fmt.Errorf("%s escapes the staging root: %s", name, p)
		}
	}

	return nil
}
