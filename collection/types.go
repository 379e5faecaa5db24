// Package collection loads the static input files of a collection run and
// merges them into per-item trait records.
//
// Three sources feed a run: item metadata (id, image, attribute list), a rank
// mapping (id to global rank) and an optional per-item analysis file that
// marks high-provenance traits. All three are pre-fetched static JSON; the
// loader never touches the network.
package collection

import (
	"sort"

	"github.com/pulplabs/traitdex/trait"
)

// RankUnranked is the rank sentinel for items absent from the rank mapping.
// The collection is capped at 4200 items, so the sentinel can never collide
// with a real rank.
const RankUnranked = 999999

// TraitValue holds one attribute of an item in both its original and
// normalized form. Raw is kept for display; Normalized feeds every key.
type TraitValue struct {
	Raw        string
	Normalized string
}

// Item is one collection member with its merged trait record.
type Item struct {
	ID     int
	Rank   int
	Image  string
	Traits map[string]TraitValue // category -> value
}

// Key returns the TraitKey for one of the item's categories.
// The second result is false when the item has no value for the category.
func (it *Item) Key(category string) (trait.Key, bool) {
	tv, ok := it.Traits[category]
	if !ok {
		return "", false
	}
	return trait.Key(category + trait.KeySeparator + tv.Normalized), true
}

// Keys returns the item's TraitKeys for the given categories, in order.
// Categories the item lacks are skipped.
func (it *Item) Keys(categories []string) []trait.Key {
	keys := make([]trait.Key, 0, len(categories))
	for _, c := range categories {
		if k, ok := it.Key(c); ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// Policy selects how items with missing categories are treated.
//
// The two policies are intentionally different per artifact family and must
// never be mixed inside one artifact: strict changes which items exist,
// lenient changes which values they carry.
type Policy int

const (
	// PolicyStrict excludes any item lacking a value for one of the
	// collection's categories. Feeds the combo index, pair counts, partner
	// graph and family shards.
	PolicyStrict Policy = iota

	// PolicyLenient fills missing categories with the sentinel value "None".
	// Sentinel traits are excluded from pairing. Feeds group analysis and
	// the per-item trait documents.
	PolicyLenient
)

// Collection is the merged, immutable result of a load.
type Collection struct {
	Items      []*Item
	Categories []string // sorted union of observed categories
}

// ItemByID returns the item with the given id, or nil.
func (c *Collection) ItemByID(id int) *Item {
	for _, it := range c.Items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

// Eligible applies a missing-data policy.
//
// Under PolicyStrict the returned items are the complete ones and skipped
// carries the ids of excluded items for warning logs. Under PolicyLenient
// every item is returned, with missing categories filled by a fresh sentinel
// TraitValue; the originals are never mutated.
func (c *Collection) Eligible(policy Policy) (items []*Item, skipped []int) {
	for _, it := range c.Items {
		missing := missingCategories(it, c.Categories)
		switch {
		case len(missing) == 0:
			items = append(items, it)
		case policy == PolicyStrict:
			skipped = append(skipped, it.ID)
		default:
			filled := &Item{
				ID:     it.ID,
				Rank:   it.Rank,
				Image:  it.Image,
				Traits: make(map[string]TraitValue, len(c.Categories)),
			}
			for cat, tv := range it.Traits {
				filled.Traits[cat] = tv
			}
			for _, cat := range missing {
				filled.Traits[cat] = TraitValue{Raw: "", Normalized: trait.Sentinel}
			}
			items = append(items, filled)
		}
	}
	return items, skipped
}

func missingCategories(it *Item, categories []string) []string {
	var missing []string
	for _, c := range categories {
		if _, ok := it.Traits[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}

// Provenance is the high-provenance trait lookup built from the optional
// analysis file. The zero value is usable and reports nothing.
type Provenance struct {
	byItem map[int]map[trait.Key]struct{}
}

// NewProvenance builds a lookup directly from per-item trait lists.
func NewProvenance(traits map[int][]trait.Key) *Provenance {
	byItem := make(map[int]map[trait.Key]struct{}, len(traits))
	for id, keys := range traits {
		set := make(map[trait.Key]struct{}, len(keys))
		for _, k := range keys {
			set[k] = struct{}{}
		}
		byItem[id] = set
	}
	return &Provenance{byItem: byItem}
}

// Has reports whether key is one of the item's high-provenance traits.
func (p *Provenance) Has(id int, key trait.Key) bool {
	if p == nil || p.byItem == nil {
		return false
	}
	_, ok := p.byItem[id][key]
	return ok
}

// HasAny reports whether any member of ids carries key as a high-provenance
// trait.
func (p *Provenance) HasAny(ids []int, key trait.Key) bool {
	for _, id := range ids {
		if p.Has(id, key) {
			return true
		}
	}
	return false
}

func sortedCategories(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
