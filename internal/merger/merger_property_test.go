//go:build property
// +build property

package merger

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/conneroisu/transmerge/internal/locale"
)

// fragmentFiles builds one fragment per locale/key pair so that file i
// carries key keys[i] with value i.
func fragmentFiles(locales, keys []string) (map[string]string, []string) {
	files := make(map[string]string, len(locales))
	order := make([]string, 0, len(locales))
	for i, l := range locales {
		name := fmt.Sprintf("m%d.%s.json", i, l)
		files[name] = fmt.Sprintf(`{%q:%d}`, keys[i%len(keys)], i)
		order = append(order, name)
	}
	return files, order
}

var localePool = []string{"en", "de", "fr", "it"}

func pickLocales(idx []int) []string {
	out := make([]string, len(idx))
	for i, n := range idx {
		out[i] = localePool[n%len(localePool)]
	}
	return out
}

func TestMergeProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)
	extractor := locale.MustNew(`^m\d+\.(\w+)\.json$`)

	// Property: output locales equal the distinct extracted locales
	properties.Property("locale set", prop.ForAll(
		func(idx []int) bool {
			locales := pickLocales(idx)
			files, order := fragmentFiles(locales, []string{"k"})
			set, err := New(extractor, newMemFS(files), nil).Merge(context.Background(), order)
			if err != nil {
				return false
			}
			distinct := map[string]bool{}
			for _, l := range locales {
				distinct[l] = true
			}
			if set.Len() != len(distinct) {
				return false
			}
			for _, l := range set.Locales() {
				if !distinct[l] {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(8, gen.IntRange(0, 3)),
	))

	// Property: for a shared key the last fragment in discovery order wins
	properties.Property("last writer wins", prop.ForAll(
		func(n int) bool {
			locales := make([]string, n)
			for i := range locales {
				locales[i] = "en"
			}
			files, order := fragmentFiles(locales, []string{"k"})
			set, err := New(extractor, newMemFS(files), nil).Merge(context.Background(), order)
			if err != nil {
				return false
			}
			en, _ := set.Get("en")
			var got int
			if err := json.Unmarshal(en.Translations["k"], &got); err != nil {
				return false
			}
			return got == n-1
		},
		gen.IntRange(1, 20),
	))

	// Property: disjoint keys produce the union with values unchanged
	properties.Property("disjoint union", prop.ForAll(
		func(n int) bool {
			locales := make([]string, n)
			keys := make([]string, n)
			for i := range locales {
				locales[i] = "de"
				keys[i] = fmt.Sprintf("key%d", i)
			}
			files, order := fragmentFiles(locales, keys)
			set, err := New(extractor, newMemFS(files), nil).Merge(context.Background(), order)
			if err != nil {
				return false
			}
			de, _ := set.Get("de")
			if len(de.Translations) != n {
				return false
			}
			for i, k := range keys {
				if string(de.Translations[k]) != fmt.Sprint(i) {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 20),
	))

	// Property: encoding is byte-identical across runs
	properties.Property("idempotent encoding", prop.ForAll(
		func(idx []int) bool {
			files, order := fragmentFiles(pickLocales(idx), []string{"a", "b", "c"})
			first, err := New(extractor, newMemFS(files), nil).Merge(context.Background(), order)
			if err != nil {
				return false
			}
			second, err := New(extractor, newMemFS(files), nil).Merge(context.Background(), order)
			if err != nil {
				return false
			}
			_, a, err := Render(first, "out")
			if err != nil {
				return false
			}
			_, b, err := Render(second, "out")
			if err != nil {
				return false
			}
			for l, data := range a {
				if string(data) != string(b[l]) {
					return false
				}
			}
			return len(a) == len(b)
		},
		gen.SliceOfN(6, gen.IntRange(0, 2)),
	))

	properties.TestingRun(t)
}
