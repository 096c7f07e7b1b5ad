package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings) > 0
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder

	if len(vr.Errors) > 0 {
		builder.WriteString("❌ Validation Errors:\n")
		for _, err := range vr.Errors {
			builder.WriteString(fmt.Sprintf("  • %s: %s\n", err.Field, err.Message))
			for _, suggestion := range err.Suggestions {
				builder.WriteString(fmt.Sprintf("    💡 %s\n", suggestion))
			}
		}
		builder.WriteString("\n")
	}

	if len(vr.Warnings) > 0 {
		builder.WriteString("⚠️  Validation Warnings:\n")
		for _, warning := range vr.Warnings {
			builder.WriteString(fmt.Sprintf("  • %s: %s\n", warning.Field, warning.Message))
			for _, suggestion := range warning.Suggestions {
				builder.WriteString(fmt.Sprintf("    💡 %s\n", suggestion))
			}
		}
	}

	return builder.String()
}

// ValidateConfigWithDetails performs comprehensive validation with detailed feedback
func ValidateConfigWithDetails(config *Config) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	validateMergeConfigDetails(&config.Merge, result)
	validateWatchConfigDetails(&config.Watch, result)
	validateLogConfigDetails(&config.Log, result)

	result.Valid = !result.HasErrors()

	return result
}

func validateMergeConfigDetails(config *MergeConfig, result *ValidationResult) {
	switch {
	case config.SearchGlobPattern == "":
		result.Errors = append(result.Errors, ValidationError{
			Field:       "merge.search_glob_pattern",
			Message:     "missing required setting",
			Suggestions: []string{fmt.Sprintf("Set it to a glob such as %q", DefaultSearchGlobPattern)},
		})
	case !strings.HasSuffix(config.SearchGlobPattern, ".json"):
		result.Errors = append(result.Errors, ValidationError{
			Field:       "merge.search_glob_pattern",
			Value:       config.SearchGlobPattern,
			Message:     "pattern must end with .json",
			Suggestions: []string{"Translation fragments are JSON files; end the pattern with *.json"},
		})
	case !strings.Contains(config.SearchGlobPattern, "**"):
		result.Warnings = append(result.Warnings, ValidationError{
			Field:       "merge.search_glob_pattern",
			Value:       config.SearchGlobPattern,
			Message:     "pattern is not recursive",
			Suggestions: []string{"Use ** to pick up fragments from every module, e.g. src/assets/**/translations/*.json"},
		})
	}

	if config.DestinationPath == "" {
		result.Errors = append(result.Errors, ValidationError{
			Field:       "merge.destination_path",
			Message:     "missing required setting",
			Suggestions: []string{fmt.Sprintf("Set it to a directory such as %q", DefaultDestinationPath)},
		})
	} else if filepath.IsAbs(config.DestinationPath) || strings.HasPrefix(filepath.Clean(config.DestinationPath), "..") {
		result.Errors = append(result.Errors, ValidationError{
			Field:       "merge.destination_path",
			Value:       config.DestinationPath,
			Message:     "destination must stay inside the staging root",
			Suggestions: []string{"Use a relative path such as src/assets/i18n"},
		})
	}

	if config.MatchPattern != "" {
		re, err := regexp.Compile(config.MatchPattern)
		switch {
		case err != nil:
			result.Errors = append(result.Errors, ValidationError{
				Field:       "merge.match_pattern",
				Value:       config.MatchPattern,
				Message:     fmt.Sprintf("invalid regular expression: %v", err),
				Suggestions: []string{`Example: .*\.(\w+)\.json`},
			})
		case re.NumSubexp() == 0:
			result.Errors = append(result.Errors, ValidationError{
				Field:       "merge.match_pattern",
				Value:       config.MatchPattern,
				Message:     "pattern has no capture group, no locale can be extracted",
				Suggestions: []string{"Wrap the locale part in parentheses, e.g. .*\\.(\\w+)\\.json"},
			})
		case re.NumSubexp() > 1:
			result.Warnings = append(result.Warnings, ValidationError{
				Field:       "merge.match_pattern",
				Value:       config.MatchPattern,
				Message:     "only the first capture group is used as the locale",
				Suggestions: []string{"Use (?:...) for groups that should not capture"},
			})
		}
	}

	if config.StagingRoot != "" && !pathExists(config.StagingRoot) {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:       "merge.staging_root",
			Value:       config.StagingRoot,
			Message:     "staging root does not exist yet",
			Suggestions: []string{"It is created by the asset staging step; runs before that find no fragments"},
		})
	}

	if !contains(config.Exclude, "node_modules") {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:       "merge.exclude",
			Value:       config.Exclude,
			Message:     "node_modules is not excluded",
			Suggestions: []string{"Add node_modules to avoid merging fragments from dependencies"},
		})
	}
}

func validateWatchConfigDetails(config *WatchConfig, result *ValidationResult) {
	if config.Debounce < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "watch.debounce",
			Value:   config.Debounce,
			Message: "debounce must not be negative",
		})
	}
}

func validateLogConfigDetails(config *LogConfig, result *ValidationResult) {
	if config.Format != "" && config.Format != "text" && config.Format != "json" {
		result.Errors = append(result.Errors, ValidationError{
			Field:       "log.format",
			Value:       config.Format,
			Message:     "unsupported log format",
			Suggestions: []string{"Use text or json"},
		})
	}
	switch strings.ToLower(config.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		result.Errors = append(result.Errors, ValidationError{
			Field:       "log.level",
			Value:       config.Level,
			Message:     "unsupported log level",
			Suggestions: []string{"Use debug, info, warn or error"},
		})
	}
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
