package extractor

import (
	"log/slog"

	"github.com/aluiziolira/go-scrape-parts/models"
)

// accumulator collects records for a single extraction call. The first
// record seen for a name wins; later ones are dropped. It is not safe for
// concurrent use and must not be shared between calls.
type accumulator[T models.Product] struct {
	category models.Category
	observer Observer
	seen     map[string]struct{}
	items    []T
}

func newAccumulator[T models.Product](category models.Category, observer Observer) *accumulator[T] {
	return &accumulator[T]{
		category: category,
		observer: observer,
		seen:     make(map[string]struct{}),
	}
}

func (a *accumulator[T]) skip(reason string) {
	a.observer.CandidateSkipped(a.category, reason)
}

func (a *accumulator[T]) add(item T) bool {
	key := item.Key()
	if _, ok := a.seen[key]; ok {
		a.skip(SkipDuplicate)
		return false
	}
	a.seen[key] = struct{}{}
	a.items = append(a.items, item)
	return true
}

// complete drops every accumulated record that fails validate. It runs once,
// after all candidates have been added.
func (a *accumulator[T]) complete(validate func(T) error) []T {
	out := make([]T, 0, len(a.items))
	for _, item := range a.items {
		if err := validate(item); err != nil {
			slog.Debug("dropping incomplete record",
				slog.String("category", string(a.category)),
				slog.Any("error", err),
			)
			a.skip(SkipIncomplete)
			continue
		}
		out = append(out, item)
	}
	a.observer.RecordsExtracted(a.category, len(out))
	return out
}
