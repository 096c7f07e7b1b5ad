package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigWizard asks for the merge settings a project needs and renders
// them as a .transmerge.yml document.
type ConfigWizard struct {
	reader *bufio.Reader
	out    io.Writer
	config *Config
}

// NewConfigWizard creates a wizard reading from stdin and prompting on stdout.
func NewConfigWizard() *ConfigWizard {
	return NewConfigWizardWithIO(os.Stdin, os.Stdout, nil)
}

// NewConfigWizardWithIO creates a wizard on the given streams. Settings
// already present in existing are kept and their prompts skipped.
func NewConfigWizardWithIO(in io.Reader, out io.Writer, existing *Config) *ConfigWizard {
	cfg := &Config{}
	if existing != nil {
		*cfg = *existing
		cfg.Merge.Exclude = append([]string(nil), existing.Merge.Exclude...)
	}
	return &ConfigWizard{
		reader: bufio.NewReader(in),
		out:    out,
		config: cfg,
	}
}

// Run executes the prompts and returns the resulting configuration.
func (w *ConfigWizard) Run() (*Config, error) {
	fmt.Fprintln(w.out, "🌐 Translation Merger Setup")
	fmt.Fprintln(w.out, "===========================")

	if w.config.Merge.SearchGlobPattern == "" {
		pattern, err := w.askValidated(
			"Glob pattern used to find translation files",
			DefaultSearchGlobPattern,
			validateGlobAnswer,
		)
		if err != nil {
			return nil, fmt.Errorf("search glob pattern: %w", err)
		}
		w.config.Merge.SearchGlobPattern = pattern
	}

	if w.config.Merge.DestinationPath == "" {
		w.config.Merge.DestinationPath = w.askString(
			"Directory the merged translation files are written to",
			DefaultDestinationPath,
		)
	}

	if w.config.Merge.MatchPattern == "" {
		match, err := w.askValidated(
			"Regex extracting the locale from a file name (empty uses the file name)",
			"",
			validateMatchAnswer,
		)
		if err != nil {
			return nil, fmt.Errorf("match pattern: %w", err)
		}
		w.config.Merge.MatchPattern = match
	}

	if w.config.Merge.StagingRoot == "" {
		w.config.Merge.StagingRoot = DefaultStagingRoot
	}
	if w.config.Merge.Exclude == nil {
		w.config.Merge.Exclude = append([]string(nil), DefaultExclude...)
	}

	if err := validateConfig(withLogDefaults(w.config)); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, "✅ Configuration completed successfully!")
	return w.config, nil
}

func withLogDefaults(c *Config) *Config {
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Watch.Debounce <= 0 {
		c.Watch.Debounce = DefaultWatchDebounce
	}
	return c
}

func validateGlobAnswer(answer string) error {
	if answer == "" {
		return fmt.Errorf("a glob pattern is required")
	}
	if !strings.HasSuffix(answer, ".json") {
		return fmt.Errorf("the pattern must end with .json")
	}
	return nil
}

func validateMatchAnswer(answer string) error {
	if answer == "" {
		return nil
	}
	re, err := regexp.Compile(answer)
	if err != nil {
		return fmt.Errorf("invalid regular expression: %w", err)
	}
	if re.NumSubexp() == 0 {
		return fmt.Errorf("the pattern needs a capture group for the locale")
	}
	return nil
}

func (w *ConfigWizard) askString(prompt, defaultValue string) string {
	value, _ := w.readAnswer(prompt, defaultValue)
	return value
}

// askValidated repeats the prompt until validate accepts the answer. It
// fails once input is exhausted and the default is not acceptable either.
func (w *ConfigWizard) askValidated(prompt, defaultValue string, validate func(string) error) (string, error) {
	for {
		value, eof := w.readAnswer(prompt, defaultValue)
		err := validate(value)
		if err == nil {
			return value, nil
		}
		fmt.Fprintf(w.out, "  ❌ %v\n", err)
		if eof {
			return "", err
		}
	}
}

func (w *ConfigWizard) readAnswer(prompt, defaultValue string) (string, bool) {
	if defaultValue != "" {
		fmt.Fprintf(w.out, "%s [%s]: ", prompt, defaultValue)
	} else {
		fmt.Fprintf(w.out, "%s: ", prompt)
	}

	input, err := w.reader.ReadString('\n')
	eof := err != nil

	input = strings.TrimSpace(input)
	if input == "" {
		return defaultValue, eof
	}
	return input, eof
}

// WriteConfigFile writes the generated configuration to filename.
func (w *ConfigWizard) WriteConfigFile(filename string) error {
	data, err := w.YAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	fmt.Fprintf(w.out, "📝 Configuration written to %s\n", filename)
	return nil
}

// YAML renders the configuration collected so far.
func (w *ConfigWizard) YAML() ([]byte, error) {
	data, err := yaml.Marshal(w.config)
	if err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	return append([]byte("# transmerge configuration\n"), data...), nil
}
