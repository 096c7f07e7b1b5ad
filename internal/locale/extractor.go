// Package locale derives the locale identifier of a translation fragment
// from its file name.
//
// Without a pattern the locale is the file name minus its extension
// (fr.json -> fr). With a pattern the regular expression is searched in the
// base name and the first capture group is the locale
// (app.de-CH.json with `.*\.([\w-]+)\.json` -> de-CH).
package locale

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/conneroisu/transmerge/internal/errors"
)

// Extractor maps fragment paths to locales. The zero value is not usable;
// construct it with New.
type Extractor struct {
	pattern string
	re      *regexp.Regexp
}

// New compiles pattern. An empty pattern selects file-stem mode.
func New(pattern string) (*Extractor, error) {
	e := &Extractor{pattern: pattern}
	if pattern == "" {
		return e, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.WrapConfig(err, errors.ErrCodeInvalidMatchPattern, "invalid match pattern").
			WithContext("pattern", pattern)
	}
	e.re = re
	return e, nil
}

// MustNew is like New but panics on an invalid pattern. Intended for tests
// and package-level patterns.
func MustNew(pattern string) *Extractor {
	e, err := New(pattern)
	if err != nil {
		panic(err)
	}
	return e
}

// Pattern returns the configured pattern source, or "" in file-stem mode.
func (e *Extractor) Pattern() string {
	return e.pattern
}

// Extract returns the locale for filePath. Only the base name is inspected.
func (e *Extractor) Extract(filePath string) (string, error) {
	name := baseName(filePath)

	if e.re == nil {
		return strings.TrimSuffix(name, filepath.Ext(name)), nil
	}

	match := e.re.FindStringSubmatch(name)
	// match[0] is the whole match; a pattern without groups has len 1
	if len(match) < 2 || match[1] == "" {
		return "", errors.NewLocaleNotFoundError(name).
			WithFile(filePath).
			WithContext("pattern", e.pattern)
	}
	return match[1], nil
}

// baseName accepts both OS paths and slash-separated storage URLs.
func baseName(p string) string {
	return path.Base(filepath.ToSlash(p))
}
