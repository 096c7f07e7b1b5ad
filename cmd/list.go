package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/transmerge/internal/locale"
	"github.com/conneroisu/transmerge/internal/storage"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"l"},
	Short:   "List discovered translation files and their locales",
	Long: `List every translation file the merge would read, in discovery order,
with the locale extracted from its name. Locales that are valid BCP 47
tags are shown with their English and native language names.

Files whose locale cannot be extracted are listed with the error, so a
bad --match pattern can be fixed before merging.

Examples:
  transmerge list                          # Table output
  transmerge list -f json                  # JSON output
  transmerge list --match '.*\.(\w+)\.json' -f yaml`,
	RunE: runList,
}

var (
	listFlags  *MergeFlags
	listFormat string
)

func init() {
	rootCmd.AddCommand(listCmd)

	listFlags = AddMergeFlags(listCmd)
	AddFormatFlag(listCmd, &listFormat, "table", []string{"table", "json", "yaml"})
}

// FragmentInfo describes one discovered translation file
type FragmentInfo struct {
	File     string `json:"file" yaml:"file"`
	Locale   string `json:"locale,omitempty" yaml:"locale,omitempty"`
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
	Native   string `json:"native,omitempty" yaml:"native,omitempty"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, mergeBindings)
	if err != nil {
		return err
	}
	if err := cfg.Merge.RequirePresent(); err != nil {
		return err
	}

	extractor, err := locale.New(cfg.Merge.MatchPattern)
	if err != nil {
		return err
	}

	files, err := storage.New().Discover(cmd.Context(), cfg.Merge.SearchRoot(), cfg.Merge.SearchGlobPattern, cfg.Merge.Exclude)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(files) == 0 && listFormat == "table" {
		fmt.Fprintln(out, "No translation files found.")
		return nil
	}

	infos := make([]FragmentInfo, 0, len(files))
	for _, file := range files {
		infos = append(infos, describeFragment(extractor, file))
	}

	switch listFormat {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(infos)
	case "yaml":
		return yaml.NewEncoder(out).Encode(infos)
	default:
		return outputFragmentTable(out, infos)
	}
}

func describeFragment(extractor *locale.Extractor, file string) FragmentInfo {
	info := FragmentInfo{File: file}

	loc, err := extractor.Extract(file)
	if err != nil {
		info.Error = err.Error()
		return info
	}
	info.Locale = loc
	info.Language, info.Native = languageNames(loc)
	return info
}

// languageNames returns the English and native names of locale, or empty
// strings when it is not a known BCP 47 tag.
func languageNames(locale string) (string, string) {
	tag, err := language.Parse(locale)
	if err != nil {
		return "", ""
	}
	return display.English.Tags().Name(tag), display.Self.Name(tag)
}

func outputFragmentTable(w io.Writer, infos []FragmentInfo) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LOCALE\tLANGUAGE\tFILE")
	for _, info := range infos {
		if info.Error != "" {
			fmt.Fprintf(tw, "❌\t%s\t%s\n", info.Error, info.File)
			continue
		}
		name := info.Language
		if name == "" {
			name = "-"
		} else if info.Native != "" && info.Native != info.Language {
			name = fmt.Sprintf("%s (%s)", info.Language, info.Native)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Locale, name, info.File)
	}
	return tw.Flush()
}
