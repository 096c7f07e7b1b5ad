package merger

import (
	"encoding/json"
	"sort"
)

// Collection is the accumulated translation map for one locale.
type Collection struct {
	Locale       string
	Translations map[string]json.RawMessage
	// Sources lists the fragments folded into this collection, in merge order.
	Sources []string
}

func newCollection(locale string) *Collection {
	return &Collection{
		Locale:       locale,
		Translations: make(map[string]json.RawMessage),
	}
}

// Overlay copies every top-level key of fragment onto the collection.
// Existing keys are replaced wholesale, nested objects included.
func (c *Collection) Overlay(source string, fragment map[string]json.RawMessage) {
	for key, value := range fragment {
		c.Translations[key] = value
	}
	c.Sources = append(c.Sources, source)
}

// Keys returns the translation keys in sorted order.
func (c *Collection) Keys() []string {
	keys := make([]string, 0, len(c.Translations))
	for key := range c.Translations {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// CollectionSet holds at most one Collection per locale, in first-seen order.
type CollectionSet struct {
	order []string
	byKey map[string]*Collection
}

// NewCollectionSet creates an empty set.
func NewCollectionSet() *CollectionSet {
	return &CollectionSet{byKey: make(map[string]*Collection)}
}

// Get returns the collection for locale, if any.
func (s *CollectionSet) Get(locale string) (*Collection, bool) {
	c, ok := s.byKey[locale]
	return c, ok
}

// GetOrCreate returns the collection for locale, creating it on first use.
func (s *CollectionSet) GetOrCreate(locale string) *Collection {
	if c, ok := s.byKey[locale]; ok {
		return c
	}
	c := newCollection(locale)
	s.byKey[locale] = c
	s.order = append(s.order, locale)
	return c
}

// Locales returns locales in first-seen order.
func (s *CollectionSet) Locales() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Collections returns the collections in first-seen order.
func (s *CollectionSet) Collections() []*Collection {
	out := make([]*Collection, 0, len(s.order))
	for _, locale := range s.order {
		out = append(out, s.byKey[locale])
	}
	return out
}

// Len reports the number of locales.
func (s *CollectionSet) Len() int {
	return len(s.order)
}
