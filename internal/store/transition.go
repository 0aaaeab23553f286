package store

import (
	"slices"
	"time"

	"github.com/fekuna/omnipos-storefront/internal/model"
)

// categoryIndex resolves the category value stored on a product. Names are
// matched first, ids second, so data written with either form counts toward
// the same category.
type categoryIndex struct {
	byName map[string]int
	byID   map[string]int
}

func newCategoryIndex(categories []model.Category) categoryIndex {
	idx := categoryIndex{
		byName: make(map[string]int, len(categories)),
		byID:   make(map[string]int, len(categories)),
	}
	for i, c := range categories {
		if _, ok := idx.byName[c.Name]; !ok {
			idx.byName[c.Name] = i
		}
		if _, ok := idx.byID[c.ID]; !ok {
			idx.byID[c.ID] = i
		}
	}
	return idx
}

func (idx categoryIndex) resolve(key string) (int, bool) {
	if key == "" {
		return -1, false
	}
	if i, ok := idx.byName[key]; ok {
		return i, true
	}
	i, ok := idx.byID[key]
	return i, ok
}

// recomputeCounts returns a new category list whose productCount values are
// derived from scratch. Products pointing at unknown categories are skipped.
func recomputeCounts(categories []model.Category, products []model.Product, now time.Time) []model.Category {
	idx := newCategoryIndex(categories)
	freq := make([]int, len(categories))
	for _, p := range products {
		if i, ok := idx.resolve(p.Category); ok {
			freq[i]++
		}
	}

	next := slices.Clone(categories)
	for i := range next {
		next[i].ProductCount = freq[i]
		next[i].UpdatedAt = now
	}
	return next
}

// countDelta maps a product category value to a count change.
type countDelta map[string]int

// applyCountDelta patches productCount for the categories named in delta,
// never going below zero. changed is false when no category was touched, in
// which case the input list is returned as is.
func applyCountDelta(categories []model.Category, delta countDelta, now time.Time) (next []model.Category, changed bool) {
	idx := newCategoryIndex(categories)
	byIndex := make(map[int]int, len(delta))
	for key, d := range delta {
		if i, ok := idx.resolve(key); ok {
			byIndex[i] += d
		}
	}

	for i, d := range byIndex {
		if d == 0 {
			continue
		}
		if !changed {
			next = slices.Clone(categories)
			changed = true
		}
		next[i].ProductCount = max(0, next[i].ProductCount+d)
		next[i].UpdatedAt = now
	}
	if !changed {
		return categories, false
	}
	return next, true
}

// productDelta is the count change caused by replacing before with after.
// Either side may be nil for add and delete.
func productDelta(before, after *model.Product) countDelta {
	delta := countDelta{}
	if before != nil && after != nil && before.Category == after.Category {
		return delta
	}
	if before != nil && before.Category != "" {
		delta[before.Category]--
	}
	if after != nil && after.Category != "" {
		delta[after.Category]++
	}
	return delta
}

// reconcileCounts re-derives every productCount after a category write.
// Adding, renaming or deleting a category can move products between
// categories that share a name, so the whole list is recounted; updatedAt
// only changes where the count did.
func reconcileCounts(categories []model.Category, products []model.Product, now time.Time) []model.Category {
	next := recomputeCounts(categories, products, now)
	for i := range next {
		if next[i].ProductCount == categories[i].ProductCount {
			next[i].UpdatedAt = categories[i].UpdatedAt
		}
	}
	return next
}
