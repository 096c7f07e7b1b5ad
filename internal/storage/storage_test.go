package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"

	mergeerrors "github.com/conneroisu/transmerge/internal/errors"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func relAll(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		rel     string
		exclude []string
		want    bool
	}{
		{"doublestar", "src/assets/**/translations/*.json", "src/assets/shop/translations/en.json", nil, true},
		{"doublestar zero dirs", "src/assets/**/translations/*.json", "src/assets/translations/en.json", nil, true},
		{"deep module", "**/translations/*.json", "modules/a/src/assets/translations/de.json", nil, true},
		{"wrong extension", "**/translations/*.json", "translations/en.yaml", nil, false},
		{"wrong directory", "src/assets/**/translations/*.json", "src/other/translations/en.json", nil, false},
		{"excluded segment", "**/*.json", "node_modules/pkg/en.json", []string{"node_modules"}, false},
		{"excluded nested segment", "**/*.json", "a/node_modules/en.json", []string{"node_modules"}, false},
		{"excluded glob", "**/*.json", "a/tmp-cache/en.json", []string{"tmp-*"}, false},
		{"leading dot slash", "./src/*.json", "./src/en.json", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.pattern, tt.rel, tt.exclude))
		})
	}
}

func TestValidatePattern(t *testing.T) {
	assert.NoError(t, ValidatePattern("src/assets/**/translations/*.json"))

	err := ValidatePattern("src/assets/**/translations/*.yaml")
	require.Error(t, err)
	assert.True(t, mergeerrors.IsConfigError(err))

	err = ValidatePattern("src/[a-.json")
	require.Error(t, err)
	assert.Equal(t, mergeerrors.ErrCodeInvalidGlobPattern, mergeerrors.ExtractCode(err))
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/assets/core/translations/en.json", `{}`)
	writeFile(t, root, "src/assets/core/translations/de.json", `{}`)
	writeFile(t, root, "src/assets/shop/translations/en.json", `{}`)
	writeFile(t, root, "src/assets/shop/translations/readme.md", `x`)
	writeFile(t, root, "src/assets/i18n/en.json", `{}`)
	writeFile(t, root, "node_modules/lib/src/assets/x/translations/en.json", `{}`)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src/assets/empty/translations/dir.json"), 0o755))

	store := New()
	files, err := store.Discover(context.Background(), root, "**/translations/*.json", DefaultExclude)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"src/assets/core/translations/de.json",
		"src/assets/core/translations/en.json",
		"src/assets/shop/translations/en.json",
	}, relAll(t, root, files))
}

func TestDiscoverSortsAcrossDirectories(t *testing.T) {
	root := t.TempDir()
	// Created out of lexical order so directory listing order differs.
	for _, module := range []string{"c", "a", "b"} {
		writeFile(t, root, "modules/"+module+"/i18n/"+module+".en.json", `{}`)
	}

	files, err := New().Discover(context.Background(), root, "modules/**/i18n/*.json", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"modules/a/i18n/a.en.json",
		"modules/b/i18n/b.en.json",
		"modules/c/i18n/c.en.json",
	}, relAll(t, root, files))
}

func TestStoreWithMemoryService(t *testing.T) {
	ctx := context.Background()
	fs := afs.NewFaker()
	root := "mem://localhost/" + t.Name()
	for _, rel := range []string{"z/translations/en.json", "a/translations/en.json", "a/translations/notes.txt"} {
		require.NoError(t, fs.Upload(ctx, Join(root, rel), 0o644, strings.NewReader(`{"k":"`+rel+`"}`)))
	}

	store := NewWithService(fs)
	files, err := store.Discover(ctx, root, "**/translations/*.json", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		root + "/a/translations/en.json",
		root + "/z/translations/en.json",
	}, files)

	data, err := store.ReadFragment(ctx, files[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{"k":"z/translations/en.json"}`, string(data))

	dest := Join(root, "i18n")
	require.NoError(t, store.EnsureDir(ctx, dest))
	require.NoError(t, store.WriteBytes(ctx, Join(dest, "en.json"), []byte(`{"x":1}`)))
	written, err := fs.DownloadWithURL(ctx, Join(dest, "en.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"x":1}`, string(written))
}

func TestDiscoverMissingRoot(t *testing.T) {
	files, err := New().Discover(context.Background(), filepath.Join(t.TempDir(), "absent"), "**/*.json", nil)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDiscoverRejectsBadPattern(t *testing.T) {
	_, err := New().Discover(context.Background(), t.TempDir(), "**/*.txt", nil)
	require.Error(t, err)
	assert.True(t, mergeerrors.IsConfigError(err))
}

func TestReadFragment(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "fr.json", `{"greet":"bonjour"}`)

	data, err := New().ReadFragment(context.Background(), filepath.Join(root, "fr.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"greet":"bonjour"}`, string(data))

	_, err = New().ReadFragment(context.Background(), filepath.Join(root, "missing.json"))
	require.Error(t, err)
	assert.True(t, mergeerrors.IsIOError(err))
}

func TestEnsureDirAndWrite(t *testing.T) {
	ctx := context.Background()
	dest := filepath.Join(t.TempDir(), "src", "assets", "i18n")
	store := New()

	require.NoError(t, store.EnsureDir(ctx, dest))
	assert.DirExists(t, dest)
	require.NoError(t, store.EnsureDir(ctx, dest))

	target := filepath.Join(dest, "en.json")
	require.NoError(t, store.WriteBytes(ctx, target, []byte(`{"a":1}`)))
	require.NoError(t, store.WriteBytes(ctx, target, []byte(`{"b":2}`)))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, `{"b":2}`, string(data))
}

func TestWriteJSON(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := New()

	pretty := filepath.Join(dir, "pretty.json")
	require.NoError(t, store.WriteJSON(ctx, pretty, map[string]int{"a": 1}, true))
	data, err := os.ReadFile(pretty)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1\n}", string(data))

	compact := filepath.Join(dir, "compact.json")
	require.NoError(t, store.WriteJSON(ctx, compact, map[string]int{"a": 1}, false))
	data, err = os.ReadFile(compact)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))

	err = store.WriteJSON(ctx, compact, map[string]interface{}{"f": func() {}}, false)
	require.Error(t, err)
	var decoded map[string]int
	data, _ = os.ReadFile(compact)
	require.NoError(t, json.Unmarshal(data, &decoded))
}

func TestJoin(t *testing.T) {
	assert.Equal(t, filepath.Join(".gah", "src", "en.json"), Join(".gah", "src", "en.json"))
	assert.Equal(t, "mem://localhost/stage/src/en.json", Join("mem://localhost/stage", "src", "en.json"))
}
