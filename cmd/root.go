package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/transmerge/internal/config"
	"github.com/conneroisu/transmerge/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "transmerge",
	Short: "Merge per-module translation files into one file per locale",
	Long: `transmerge collects the JSON translation fragments every module stages
under the staging root, groups them by locale and writes one merged file
per locale to the destination directory.

Locales come from the file name: fr.json is French, and with
--match '.*\.(\w+)\.json' shop.fr.json is too. Later fragments override
earlier ones key by key. A single unreadable fragment aborts the run
before anything is written.

Quick Start:
  transmerge config wizard        Create .transmerge.yml
  transmerge list                 Show discovered fragments
  transmerge merge                Merge once
  transmerge watch                Merge on every change`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .transmerge.yml, can also use TRANSMERGE_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text, json)")
}

// initConfig wires the configuration sources together.
//
// Configuration file priority (highest to lowest):
//  1. --config flag
//  2. TRANSMERGE_CONFIG_FILE environment variable
//  3. .transmerge.yml in the current directory
//
// A .env file in the current directory is loaded first so its variables
// take part in both the file lookup and the TRANSMERGE_ overrides. Values
// already present in the environment are not replaced.
func initConfig() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "Warning: cannot load .env:", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("TRANSMERGE_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".transmerge")
	}

	// TRANSMERGE_MERGE_DESTINATION_PATH overrides merge.destination_path
	viper.SetEnvPrefix("TRANSMERGE")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.BindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig applies changed flags of cmd and loads the configuration.
func loadConfig(cmd *cobra.Command, bindings map[string]string) (*config.Config, error) {
	all := map[string]string{
		"log-level":  config.KeyLogLevel,
		"log-format": config.KeyLogFormat,
	}
	for flag, key := range bindings {
		all[flag] = key
	}
	SetViperBindings(cmd, all)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the logger configured by cfg.
func newLogger(cfg *config.Config, out io.Writer) (logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return logging.NewLogger(&logging.LoggerConfig{
		Level:     level,
		Format:    cfg.Log.Format,
		Output:    out,
		Component: "transmerge",
	}), nil
}
