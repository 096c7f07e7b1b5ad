package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/transmerge/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create, show and validate the configuration",
}

var configWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactively create .transmerge.yml",
	Long: `Ask for the glob that finds translation files, the destination
directory and the optional locale regex, then write the answers as YAML.
Settings that are already configured are kept without asking.

Examples:
  transmerge config wizard
  transmerge config wizard --output config/transmerge.yml`,
	RunE: runConfigWizard,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and suggest fixes",
	RunE:  runConfigValidate,
}

var (
	configOutput     string
	configShowFormat string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configWizardCmd, configShowCmd, configValidateCmd)

	configWizardCmd.Flags().StringVarP(&configOutput, "output", "o", ".transmerge.yml", "File the configuration is written to")
	AddFormatFlag(configShowCmd, &configShowFormat, "yaml", []string{"yaml", "json"})
}

func runConfigWizard(cmd *cobra.Command, args []string) error {
	existing, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	if _, err := os.Stat(configOutput); err == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "⚠️  %s exists and will be overwritten\n", configOutput)
	}

	wizard := config.NewConfigWizardWithIO(cmd.InOrStdin(), cmd.OutOrStdout(), existing)
	if _, err := wizard.Run(); err != nil {
		return err
	}
	return wizard.WriteConfigFile(configOutput)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if configShowFormat == "json" {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(cfg)
	}
	encoder := yaml.NewEncoder(out)
	encoder.SetIndent(2)
	return encoder.Encode(cfg)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}

	result := config.ValidateConfigWithDetails(cfg)
	out := cmd.OutOrStdout()
	if result.HasErrors() || result.HasWarnings() {
		fmt.Fprint(out, result.String())
	}
	if !result.Valid {
		return fmt.Errorf("configuration has %d error(s)", len(result.Errors))
	}
	fmt.Fprintln(out, "✅ Configuration is valid")
	return nil
}
