// Package testutils provides staging-tree fixtures shared by the tests of
// several packages.
package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conneroisu/transmerge/internal/config"
)

// WriteFile writes content to root/rel, creating parent directories.
func WriteFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	return full
}

// CreateStagingTree creates a temporary staging root holding files, keyed
// by slash-separated path relative to the root.
func CreateStagingTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		WriteFile(t, root, rel, content)
	}
	return root
}

// CreateTestConfig returns a configuration using the default glob and
// destination below stagingRoot.
func CreateTestConfig(stagingRoot string) *config.Config {
	return &config.Config{
		Merge: config.MergeConfig{
			SearchGlobPattern: config.DefaultSearchGlobPattern,
			DestinationPath:   config.DefaultDestinationPath,
			StagingRoot:       stagingRoot,
			Exclude:           append([]string(nil), config.DefaultExclude...),
		},
		Watch: config.WatchConfig{Debounce: config.DefaultWatchDebounce},
		Log:   config.LogConfig{Level: "info", Format: "text"},
	}
}

// MergedPath is where the merged file of locale lands for cfg.
func MergedPath(cfg *config.Config, locale string) string {
	return filepath.Join(cfg.Merge.Destination(), locale+".json")
}

// ReadMerged returns the merged file of locale.
func ReadMerged(t *testing.T, cfg *config.Config, locale string) string {
	t.Helper()
	data, err := os.ReadFile(MergedPath(cfg, locale))
	require.NoError(t, err)
	return string(data)
}
