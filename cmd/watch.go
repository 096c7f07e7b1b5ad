package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/transmerge/internal/config"
	"github.com/conneroisu/transmerge/internal/merger"
	"github.com/conneroisu/transmerge/internal/plugins"
	"github.com/conneroisu/transmerge/internal/services"
	"github.com/conneroisu/transmerge/internal/storage"
	"github.com/conneroisu/transmerge/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Merge translation files whenever they change",
	Long: `Run a merge, then watch the staging root and merge again from scratch
every time a matching translation file is created, changed or removed.
Writes to the destination directory never trigger a merge.

A failed merge is reported and watching continues.

Examples:
  transmerge watch                    # Watch with the configured settings
  transmerge watch --debounce 1s      # Wait for a quiet second before merging
  transmerge watch --module shop      # Report runs on behalf of "shop"`,
	RunE: runWatch,
}

var (
	watchFlags    *MergeFlags
	watchModule   string
	watchDebounce time.Duration
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchFlags = AddMergeFlags(watchCmd)
	watchCmd.Flags().StringVar(&watchModule, "module", "", "Name of the module reported for each run (default: current directory)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "Quiet period before a merge (default 300ms)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	bindings := map[string]string{"debounce": config.KeyWatchDebounce}
	for flag, key := range mergeBindings {
		bindings[flag] = key
	}
	cfg, err := loadConfig(cmd, bindings)
	if err != nil {
		return err
	}
	if err := cfg.Merge.RequirePresent(); err != nil {
		return err
	}

	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := storage.New()
	manager, mergePlugin, err := newMergeHost(ctx, cfg, store, logger, false)
	if err != nil {
		return err
	}
	defer func() { _ = manager.Shutdown(context.Background()) }()

	module, err := currentModule(watchModule)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	tracker := newDigestTracker()
	trigger := func(ctx context.Context) error {
		if err := manager.Emit(ctx, plugins.Event{Name: plugins.EventAssetsBaseStylesCopied, Module: module}); err != nil {
			return err
		}
		reportWatchRun(out, mergePlugin.LastResult(), tracker)
		return nil
	}

	// The staging root may not exist before the first assets are staged.
	root := cfg.Merge.SearchRoot()
	if err := store.EnsureDir(ctx, root); err != nil {
		return err
	}

	if err := trigger(ctx); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "❌ Initial merge failed: %v\n", err)
	}

	fileWatcher, err := watcher.NewFileWatcher(cfg.Watch.Debounce, logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fileWatcher.Stop()

	fileWatcher.AddFilter(watcher.JSONFilter)
	fileWatcher.AddFilter(watcher.OutsideFilter(storage.Join(root, cfg.Merge.DestinationPath)))
	fileWatcher.AddFilter(watcher.ExcludeFilter(root, cfg.Merge.Exclude))
	fileWatcher.AddFilter(watcher.GlobFilter(root, cfg.Merge.SearchGlobPattern))

	fileWatcher.AddHandler(func(ctx context.Context, events []watcher.ChangeEvent) error {
		for _, event := range events {
			fmt.Fprintf(out, "📁 %s: %s\n", event.Type, event.Path)
		}
		if err := trigger(ctx); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "❌ Merge failed: %v\n", err)
		}
		return nil
	})

	if err := fileWatcher.AddRecursive(root, cfg.Merge.Exclude); err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}
	if err := fileWatcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	fmt.Fprintf(out, "👀 Watching %s for %s (Ctrl+C to stop)\n", root, cfg.Merge.SearchGlobPattern)
	<-ctx.Done()
	fmt.Fprintln(out, "🛑 Stopped watching")
	return nil
}

// digestTracker remembers the digest of every locale file between runs.
type digestTracker struct {
	digests map[string]string
}

func newDigestTracker() *digestTracker {
	return &digestTracker{digests: make(map[string]string)}
}

// update records outputs and returns the locales whose content changed,
// including locales that disappeared.
func (d *digestTracker) update(outputs []merger.Output) (changed, removed []string) {
	seen := make(map[string]bool, len(outputs))
	for _, out := range outputs {
		seen[out.Locale] = true
		if d.digests[out.Locale] != out.Digest {
			changed = append(changed, out.Locale)
		}
		d.digests[out.Locale] = out.Digest
	}
	for locale := range d.digests {
		if !seen[locale] {
			removed = append(removed, locale)
			delete(d.digests, locale)
		}
	}
	sort.Strings(removed)
	return changed, removed
}

func reportWatchRun(w io.Writer, result *services.MergeResult, tracker *digestTracker) {
	if result == nil {
		return
	}
	changed, removed := tracker.update(result.Outputs)
	switch {
	case len(changed) == 0 && len(removed) == 0:
		fmt.Fprintf(w, "✅ Merged %d locale(s), no changes\n", len(result.Locales))
	default:
		fmt.Fprintf(w, "✅ Merged %d locale(s), changed: %v", len(result.Locales), changed)
		if len(removed) > 0 {
			// Merged files of removed locales stay on disk.
			fmt.Fprintf(w, ", no longer produced: %v", removed)
		}
		fmt.Fprintln(w)
	}
}
