package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/transmerge/internal/config"
	"github.com/conneroisu/transmerge/internal/logging"
	"github.com/conneroisu/transmerge/internal/plugins"
	"github.com/conneroisu/transmerge/internal/plugins/builtin"
	"github.com/conneroisu/transmerge/internal/services"
	"github.com/conneroisu/transmerge/internal/storage"
)

var mergeCmd = &cobra.Command{
	Use:     "merge",
	Aliases: []string{"m"},
	Short:   "Merge translation files into one file per locale",
	Long: `Merge every translation file matched below the staging root into
<staging-root>/<dest>/<locale>.json.

The run is triggered the same way the asset pipeline triggers it: an
ASSETS_BASE_STYLES_COPIED event for the current module, handled by the
translation merger plugin.

Examples:
  transmerge merge                                   # Use .transmerge.yml
  transmerge merge -p 'src/assets/**/translations/*.json' -d src/assets/i18n
  transmerge merge --match '.*\.(\w+)\.json'         # shop.de.json is German
  transmerge merge --dry-run -f json                 # Show what would be written
  transmerge merge --report merge-report.json        # Keep a machine-readable report`,
	RunE: runMerge,
}

var (
	mergeFlags  *MergeFlags
	mergeModule string
	mergeDryRun bool
	mergeFormat string
	mergeReport string
)

func init() {
	rootCmd.AddCommand(mergeCmd)

	mergeFlags = AddMergeFlags(mergeCmd)
	mergeCmd.Flags().StringVar(&mergeModule, "module", "", "Name of the module that triggered the run (default: current directory)")
	mergeCmd.Flags().BoolVar(&mergeDryRun, "dry-run", false, "Merge and report without writing files")
	mergeCmd.Flags().StringVar(&mergeReport, "report", "", "Write the merge result as JSON to this file")
	AddFormatFlag(mergeCmd, &mergeFormat, "text", []string{"text", "json"})
}

func runMerge(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, mergeBindings)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	store := storage.New()
	manager, merger, err := newMergeHost(cmd.Context(), cfg, store, logger, mergeDryRun)
	if err != nil {
		return err
	}
	defer func() { _ = manager.Shutdown(context.Background()) }()

	module, err := currentModule(mergeModule)
	if err != nil {
		return err
	}

	if err := manager.Emit(cmd.Context(), plugins.Event{
		Name:   plugins.EventAssetsBaseStylesCopied,
		Module: module,
	}); err != nil {
		return err
	}

	result := merger.LastResult()
	if mergeReport != "" {
		if err := store.WriteJSON(cmd.Context(), mergeReport, result, true); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	return printMergeResult(cmd.OutOrStdout(), result, mergeFormat)
}

// newMergeHost registers the translation merger with a fresh plugin
// manager and initializes it.
func newMergeHost(ctx context.Context, cfg *config.Config, store services.Storage, logger logging.Logger, dryRun bool) (*plugins.Manager, *builtin.TranslationMergerPlugin, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	manager := plugins.NewManager(logger)
	merger := builtin.NewTranslationMergerPlugin(cfg,
		builtin.WithStorage(store),
		builtin.WithDryRun(dryRun),
	)
	if err := manager.Register(merger); err != nil {
		return nil, nil, err
	}
	if err := manager.Initialize(ctx); err != nil {
		return nil, nil, err
	}
	return manager, merger, nil
}

// currentModule names the module an event is raised for. Without an
// explicit name the working directory is the host module.
func currentModule(name string) (plugins.Module, error) {
	if name != "" {
		return plugins.Module{Name: name}, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return plugins.Module{}, fmt.Errorf("failed to get working directory: %w", err)
	}
	return plugins.Module{Name: "host", BasePath: wd, IsHost: true}, nil
}

func printMergeResult(w io.Writer, result *services.MergeResult, format string) error {
	if format == "json" {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	verb := "Merged"
	if result.DryRun {
		verb = "Would merge"
	}
	fmt.Fprintf(w, "✅ %s %d locale(s) from %d file(s) for %s in %s\n",
		verb, len(result.Locales), len(result.Files), result.Module, result.Duration.Round(time.Millisecond))

	if len(result.Outputs) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LOCALE\tKEYS\tDIGEST\tPATH")
	for _, out := range result.Outputs {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", out.Locale, out.Keys, out.Digest, out.Path)
	}
	return tw.Flush()
}
