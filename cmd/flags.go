package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/conneroisu/transmerge/internal/config"
)

// MergeFlags are the settings shared by commands that discover fragments
type MergeFlags struct {
	Pattern     string
	Destination string
	Match       string
	StagingRoot string
	Exclude     []string
}

// mergeBindings maps merge flags to configuration keys
var mergeBindings = map[string]string{
	"pattern":      config.KeySearchGlobPattern,
	"dest":         config.KeyDestinationPath,
	"match":        config.KeyMatchPattern,
	"staging-root": config.KeyStagingRoot,
	"exclude":      config.KeyExclude,
}

// AddMergeFlags adds the discovery and destination flags to a command
func AddMergeFlags(cmd *cobra.Command) *MergeFlags {
	flags := &MergeFlags{}
	cmd.Flags().StringVarP(&flags.Pattern, "pattern", "p", "", "Glob matching translation files below the staging root")
	cmd.Flags().StringVarP(&flags.Destination, "dest", "d", "", "Destination directory relative to the staging root")
	cmd.Flags().StringVarP(&flags.Match, "match", "m", "", "Regex whose first capture group is the locale")
	cmd.Flags().StringVar(&flags.StagingRoot, "staging-root", "", "Directory modules stage their assets into (default .gah)")
	cmd.Flags().StringSliceVar(&flags.Exclude, "exclude", nil, "Directory names skipped during discovery (default node_modules)")
	return flags
}

// AddFormatFlag adds a validated --format flag
func AddFormatFlag(cmd *cobra.Command, target *string, def string, formats []string) {
	cmd.Flags().StringVarP(target, "format", "f", def,
		fmt.Sprintf("Output format (%s)", strings.Join(formats, "|")))
	AddFlagValidation(cmd, "format", func(format string) error {
		return ValidateFormat(format, formats)
	})
}

// SetViperBindings copies the flags the user changed into viper, so flags
// take precedence over the environment and the config file.
func SetViperBindings(cmd *cobra.Command, bindings map[string]string) {
	for flagName, configKey := range bindings {
		flag := cmd.Flags().Lookup(flagName)
		if flag == nil || !flag.Changed {
			continue
		}
		if slice, ok := flag.Value.(pflag.SliceValue); ok {
			viper.Set(configKey, slice.GetSlice())
			continue
		}
		viper.Set(configKey, flag.Value.String())
	}
}

// AddFlagValidation adds validation for a specific flag
func AddFlagValidation(cmd *cobra.Command, flagName string, validator func(string) error) {
	flag := cmd.Flags().Lookup(flagName)
	if flag == nil {
		return
	}

	flag.Value = &validatingValue{
		Value:     flag.Value,
		validator: validator,
	}
}

type validatingValue struct {
	pflag.Value
	validator func(string) error
}

func (v *validatingValue) Set(val string) error {
	if v.validator != nil {
		if err := v.validator(val); err != nil {
			return err
		}
	}
	return v.Value.Set(val)
}

// ValidateFormat rejects formats outside the supported list
func ValidateFormat(format string, supported []string) error {
	for _, s := range supported {
		if strings.EqualFold(format, s) {
			return nil
		}
	}
	return fmt.Errorf("unsupported format %q (supported: %s)", format, strings.Join(supported, ", "))
}
