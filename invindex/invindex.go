// Package invindex builds the inverted trait index and the trait catalog.
//
// Postings are Roaring Bitmaps keyed by TraitKey: adding an item id is
// idempotent and iteration comes back sorted ascending, which is exactly the
// determinism the artifacts need.
package invindex

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/pulplabs/traitdex/collection"
	"github.com/pulplabs/traitdex/trait"
)

// Index is the inverted trait index over the strict-policy item set.
type Index struct {
	Categories []string
	postings   map[trait.Key]*roaring.Bitmap
}

// Build indexes every item for every category. Callers pass the
// strict-policy eligible set; items are assumed complete.
func Build(items []*collection.Item, categories []string) *Index {
	idx := &Index{
		Categories: categories,
		postings:   make(map[trait.Key]*roaring.Bitmap),
	}
	for _, it := range items {
		for _, key := range it.Keys(categories) {
			bm, ok := idx.postings[key]
			if !ok {
				bm = roaring.New()
				idx.postings[key] = bm
			}
			bm.Add(uint32(it.ID))
		}
	}
	return idx
}

// Keys returns every indexed TraitKey in lexicographic order.
func (idx *Index) Keys() []trait.Key {
	keys := make([]trait.Key, 0, len(idx.postings))
	for k := range idx.postings {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Postings returns the sorted item ids holding the trait. Nil for unknown keys.
func (idx *Index) Postings(key trait.Key) []int {
	bm, ok := idx.postings[key]
	if !ok {
		return nil
	}
	raw := bm.ToArray()
	ids := make([]int, len(raw))
	for i, v := range raw {
		ids[i] = int(v)
	}
	return ids
}

// Count returns the number of items holding the trait.
func (idx *Index) Count(key trait.Key) int {
	bm, ok := idx.postings[key]
	if !ok {
		return 0
	}
	return int(bm.GetCardinality())
}

// CatalogEntry is one trait of a category with its occurrence count.
type CatalogEntry struct {
	Trait string `json:"trait"`
	Count int    `json:"count"`
}

// Catalog lists each category's traits, rarest first, ties broken by trait
// name for determinism.
func (idx *Index) Catalog() map[string][]CatalogEntry {
	catalog := make(map[string][]CatalogEntry, len(idx.Categories))
	for _, category := range idx.Categories {
		catalog[category] = nil
	}
	for key, bm := range idx.postings {
		category := key.Category()
		catalog[category] = append(catalog[category], CatalogEntry{
			Trait: key.Value(),
			Count: int(bm.GetCardinality()),
		})
	}
	for category, entries := range catalog {
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].Count != entries[j].Count {
				return entries[i].Count < entries[j].Count
			}
			return entries[i].Trait < entries[j].Trait
		})
		catalog[category] = entries
	}
	return catalog
}
