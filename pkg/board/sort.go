package board

import (
	"fmt"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// titleSorter orders cards by title with a locale-aware collator.
// Collators are not safe for concurrent use; neither is the engine.
type titleSorter struct {
	collator *collate.Collator
}

func newTitleSorter(locale string) (*titleSorter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	return &titleSorter{collator: collate.New(tag)}, nil
}

// compare returns the collation order of two titles.
func (s *titleSorter) compare(a, b string) int {
	return s.collator.CompareString(a, b)
}

// sort reorders cards in place. Descending inverts the comparator sign;
// cards with equal titles keep their relative order either way.
func (s *titleSorter) sort(cards []Card, ascending bool) {
	slices.SortStableFunc(cards, func(a, b Card) int {
		c := s.compare(a.Title, b.Title)
		if !ascending {
			return -c
		}
		return c
	})
}
