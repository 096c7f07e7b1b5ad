// Package merger folds per-module translation fragments into one
// collection per locale and writes the result out.
//
// Merging and writing are separate steps. Merge is a pure function of the
// file list and its collaborators; Write is only reached once every fragment
// has been read and parsed, so a single bad fragment leaves the destination
// untouched for every locale.
package merger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/minio/highwayhash"

	"github.com/conneroisu/transmerge/internal/errors"
	"github.com/conneroisu/transmerge/internal/logging"
)

// LocaleExtractor derives the locale of a fragment from its path.
type LocaleExtractor interface {
	Extract(filePath string) (string, error)
}

// FragmentReader returns the raw contents of a fragment.
type FragmentReader interface {
	ReadFragment(ctx context.Context, filePath string) ([]byte, error)
}

// FragmentWriter persists merged output.
type FragmentWriter interface {
	EnsureDir(ctx context.Context, dir string) error
	WriteBytes(ctx context.Context, filePath string, data []byte) error
}

// Output describes one written locale file.
type Output struct {
	Locale string `json:"locale" yaml:"locale"`
	Path   string `json:"path" yaml:"path"`
	Keys   int    `json:"keys" yaml:"keys"`
	Digest string `json:"digest" yaml:"digest"`
}

// digestKey is fixed so digests are comparable across runs.
var digestKey = make([]byte, highwayhash.Size)

// Merger groups fragments by locale.
type Merger struct {
	extractor LocaleExtractor
	reader    FragmentReader
	logger    logging.Logger
}

// New creates a Merger. A nil logger discards output.
func New(extractor LocaleExtractor, reader FragmentReader, logger logging.Logger) *Merger {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Merger{
		extractor: extractor,
		reader:    reader,
		logger:    logger.WithComponent("merger"),
	}
}

// Merge processes files in the given order and returns the per-locale
// collections. The first failure aborts the whole run.
func (m *Merger) Merge(ctx context.Context, files []string) (*CollectionSet, error) {
	set := NewCollectionSet()

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		locale, err := m.extractor.Extract(file)
		if err != nil {
			return nil, err
		}

		m.logger.Debug(ctx, "Found locale", "locale", locale, "file", file)

		content, err := m.reader.ReadFragment(ctx, file)
		if err != nil {
			return nil, err
		}

		fragment, err := ParseFragment(file, content)
		if err != nil {
			return nil, err
		}

		set.GetOrCreate(locale).Overlay(file, fragment)
	}

	return set, nil
}

// ParseFragment decodes content as a JSON object. A literal null is an
// empty fragment; any other non-object is a parse failure.
func ParseFragment(file string, content []byte) (map[string]json.RawMessage, error) {
	var fragment map[string]json.RawMessage
	if err := json.Unmarshal(content, &fragment); err != nil {
		return nil, errors.NewParseError(file, err)
	}
	if fragment == nil {
		fragment = map[string]json.RawMessage{}
	}
	return fragment, nil
}

// Encode renders a collection as indented JSON with sorted keys and no HTML
// escaping. Equal collections always encode to identical bytes.
func Encode(c *Collection) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c.Translations); err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeInternalError,
			fmt.Sprintf("cannot encode locale %s", c.Locale), err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Digest fingerprints encoded output.
func Digest(data []byte) string {
	return fmt.Sprintf("%016x", highwayhash.Sum64(data, digestKey))
}

// OutputPath is where the collection for locale is written. URL
// destinations keep their scheme separator.
func OutputPath(destination, locale string) string {
	if strings.Contains(destination, "://") {
		return strings.TrimSuffix(destination, "/") + "/" + locale + ".json"
	}
	return filepath.Join(destination, locale+".json")
}

// Render encodes every collection without writing anything.
func Render(set *CollectionSet, destination string) ([]Output, map[string][]byte, error) {
	outputs := make([]Output, 0, set.Len())
	encoded := make(map[string][]byte, set.Len())

	for _, c := range set.Collections() {
		data, err := Encode(c)
		if err != nil {
			return nil, nil, err
		}
		encoded[c.Locale] = data
		outputs = append(outputs, Output{
			Locale: c.Locale,
			Path:   OutputPath(destination, c.Locale),
			Keys:   len(c.Translations),
			Digest: Digest(data),
		})
	}
	return outputs, encoded, nil
}

// Write creates destination and writes one file per collection, overwriting
// existing files. Everything is encoded before the first write.
func Write(ctx context.Context, set *CollectionSet, sink FragmentWriter, destination string) ([]Output, error) {
	outputs, encoded, err := Render(set, destination)
	if err != nil {
		return nil, err
	}

	if err := sink.EnsureDir(ctx, destination); err != nil {
		return nil, err
	}

	for _, out := range outputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := sink.WriteBytes(ctx, out.Path, encoded[out.Locale]); err != nil {
			return nil, err
		}
	}
	return outputs, nil
}
