package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateStagingTree(t *testing.T) {
	root := CreateStagingTree(t, map[string]string{
		"src/assets/core/translations/en.json": `{"a":1}`,
	})

	data, err := os.ReadFile(filepath.Join(root, "src", "assets", "core", "translations", "en.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))
}

func TestCreateTestConfig(t *testing.T) {
	cfg := CreateTestConfig("/stage")

	require.NoError(t, cfg.Merge.RequirePresent())
	assert.Equal(t, []string{"node_modules"}, cfg.Merge.Exclude)
	assert.Equal(t, filepath.Join("/stage", "src", "assets", "i18n", "fr.json"), MergedPath(cfg, "fr"))
}

func TestReadMerged(t *testing.T) {
	cfg := CreateTestConfig(t.TempDir())
	WriteFile(t, cfg.Merge.Destination(), "de.json", `{"x":"y"}`)

	assert.Equal(t, `{"x":"y"}`, ReadMerged(t, cfg, "de"))
}
