// Package storage adapts github.com/viant/afs to the file discovery, read
// and write capabilities the merge run consumes.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/viant/afs"
	"github.com/viant/afs/url"

	"github.com/conneroisu/transmerge/internal/errors"
)

const (
	fileMode = 0o644
	dirMode  = 0o755
)

// DefaultExclude is skipped during discovery unless configured otherwise.
var DefaultExclude = []string{"node_modules"}

// Store implements discovery, read and write on top of an afs.Service.
type Store struct {
	fs afs.Service
}

// New returns a Store backed by the default afs service (local files,
// mem:// and any other registered scheme).
func New() *Store {
	return &Store{fs: afs.New()}
}

// NewWithService wraps an existing afs.Service.
func NewWithService(fs afs.Service) *Store {
	return &Store{fs: fs}
}

// ValidatePattern rejects malformed globs and globs that cannot denote JSON files.
func ValidatePattern(pattern string) error {
	if !doublestar.ValidatePattern(pattern) {
		return errors.NewConfigError(errors.ErrCodeInvalidGlobPattern, "malformed glob pattern").
			WithContext("pattern", pattern)
	}
	if !strings.HasSuffix(pattern, ".json") {
		return errors.NewConfigError(errors.ErrCodeInvalidGlobPattern, "glob pattern must match .json files").
			WithContext("pattern", pattern)
	}
	return nil
}

// Match reports whether rel, a slash-separated path relative to the
// discovery root, satisfies pattern and is not excluded.
func Match(pattern, rel string, exclude []string) bool {
	rel = strings.TrimPrefix(filepath.ToSlash(rel), "./")
	if Excluded(rel, exclude) {
		return false
	}
	ok, err := doublestar.Match(strings.TrimPrefix(filepath.ToSlash(pattern), "./"), rel)
	return err == nil && ok
}

// Excluded reports whether any segment of rel equals or glob-matches an
// exclusion entry, or the whole path matches one.
func Excluded(rel string, exclude []string) bool {
	rel = filepath.ToSlash(rel)
	segments := strings.Split(rel, "/")
	for _, entry := range exclude {
		if entry == "" {
			continue
		}
		if ok, _ := doublestar.Match(entry, rel); ok {
			return true
		}
		for _, segment := range segments {
			if segment == entry {
				return true
			}
			if ok, _ := path.Match(entry, segment); ok {
				return true
			}
		}
	}
	return false
}

// Discover walks root recursively and returns the files whose path relative
// to root matches pattern, sorted lexically so merge order does not depend
// on directory listing order.
func (s *Store) Discover(ctx context.Context, root, pattern string, exclude []string) ([]string, error) {
	if err := ValidatePattern(pattern); err != nil {
		return nil, err
	}

	exists, err := s.fs.Exists(ctx, location(root))
	if err != nil {
		return nil, errors.WrapIO(err, errors.ErrCodeDiscoveryFailed, "cannot access discovery root", root)
	}
	if !exists {
		return nil, nil
	}

	var found []string
	visitor := func(ctx context.Context, baseURL, parent string, info os.FileInfo, reader io.Reader) (bool, error) {
		if info.IsDir() {
			return true, nil
		}
		rel := path.Join(parent, info.Name())
		if Match(pattern, rel, exclude) {
			found = append(found, Join(root, rel))
		}
		return true, nil
	}

	if err := s.fs.Walk(ctx, location(root), visitor); err != nil {
		return nil, errors.WrapIO(err, errors.ErrCodeDiscoveryFailed, "cannot walk discovery root", root)
	}
	sort.Strings(found)
	return found, nil
}

// ReadFragment returns the full contents of filePath.
func (s *Store) ReadFragment(ctx context.Context, filePath string) ([]byte, error) {
	data, err := s.fs.DownloadWithURL(ctx, location(filePath))
	if err != nil {
		return nil, errors.WrapIO(err, errors.ErrCodeReadFailed, "cannot read translation file", filePath)
	}
	return data, nil
}

// EnsureDir creates dir and its parents when missing.
func (s *Store) EnsureDir(ctx context.Context, dir string) error {
	exists, err := s.fs.Exists(ctx, location(dir))
	if err == nil && exists {
		return nil
	}
	if err := s.fs.Create(ctx, location(dir), dirMode|os.ModeDir, true); err != nil {
		return errors.WrapIO(err, errors.ErrCodeMkdirFailed, "cannot create directory", dir)
	}
	return nil
}

// WriteBytes persists data at filePath, replacing any existing file.
func (s *Store) WriteBytes(ctx context.Context, filePath string, data []byte) error {
	if err := s.fs.Upload(ctx, location(filePath), fileMode, bytes.NewReader(data)); err != nil {
		return errors.WrapIO(err, errors.ErrCodeWriteFailed, "cannot write file", filePath)
	}
	return nil
}

// WriteJSON marshals value, indented when pretty is set, and writes it.
func (s *Store) WriteJSON(ctx context.Context, filePath string, value interface{}, pretty bool) error {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(value, "", "  ")
	} else {
		data, err = json.Marshal(value)
	}
	if err != nil {
		return errors.NewInternalError(errors.ErrCodeInternalError, "cannot encode "+filePath, err)
	}
	return s.WriteBytes(ctx, filePath, data)
}

// location turns relative OS paths into absolute ones; afs resolves
// scheme-less locations as local files.
func location(p string) string {
	if strings.Contains(p, "://") {
		return p
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// Join builds a child location of base. Plain paths use the OS separator,
// URLs are joined with url.Join.
func Join(base string, elems ...string) string {
	if strings.Contains(base, "://") {
		return url.Join(base, elems...)
	}
	return filepath.Join(append([]string{base}, elems...)...)
}
