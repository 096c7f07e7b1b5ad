//go:build property

package watcher

import (
	"fmt"
	"sort"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestDebouncerProperties validates batching of debounced events
func TestDebouncerProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(9876)
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	// Property: a flushed batch holds one event per path, sorted by path,
	// and the latest event for a path wins
	properties.Property("flush deduplicates and sorts", prop.ForAll(
		func(ids []int) bool {
			if len(ids) == 0 {
				return true
			}

			d := NewDebouncer(0)
			latest := make(map[string]EventType)
			for i, id := range ids {
				path := fmt.Sprintf("module%d/en.json", id)
				eventType := EventType(i % 4)
				d.pending = append(d.pending, ChangeEvent{Path: path, Type: eventType})
				latest[path] = eventType
			}
			d.flush()

			batch := <-d.output
			if len(batch) != len(latest) {
				return false
			}
			if !sort.SliceIsSorted(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path }) {
				return false
			}
			for _, event := range batch {
				if latest[event.Path] != event.Type {
					return false
				}
			}
			return len(d.pending) == 0
		},
		gen.SliceOf(gen.IntRange(0, 9)),
	))

	properties.TestingRun(t)
}
