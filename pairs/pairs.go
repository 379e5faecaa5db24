// Package pairs computes global cross-category pair co-occurrence counts and
// the partner graph derived from them.
package pairs

import (
	"sort"

	"github.com/pulplabs/traitdex/collection"
	"github.com/pulplabs/traitdex/trait"
)

// DefaultCeiling is the global-count ceiling applied before the partner graph
// is built. Pairs more common than this are not interesting as rarities and
// would bloat the downstream artifacts.
const DefaultCeiling = 25

// Counts maps every observed PairKey to its global occurrence count.
type Counts map[trait.PairKey]int

// ItemPairKeys enumerates the item's unordered cross-category trait pairs,
// C(k,2) for k held categories. Pairs touching the sentinel value are
// skipped: a filled-in "None" is an absence, not a trait.
func ItemPairKeys(it *collection.Item, categories []string) []trait.PairKey {
	keys := it.Keys(categories)
	out := make([]trait.PairKey, 0, len(keys)*(len(keys)-1)/2)
	for i := 0; i < len(keys); i++ {
		if keys[i].IsSentinel() {
			continue
		}
		for j := i + 1; j < len(keys); j++ {
			if keys[j].IsSentinel() {
				continue
			}
			out = append(out, trait.PairKeyOf(keys[i], keys[j]))
		}
	}
	return out
}

// Count accumulates global pair counts over all items.
func Count(items []*collection.Item, categories []string) Counts {
	counts := make(Counts)
	for _, it := range items {
		for _, pk := range ItemPairKeys(it, categories) {
			counts[pk]++
		}
	}
	return counts
}

// FilterCeiling returns the entries with count <= ceiling. The receiver is
// not modified.
func (c Counts) FilterCeiling(ceiling int) Counts {
	filtered := make(Counts)
	for pk, n := range c {
		if n <= ceiling {
			filtered[pk] = n
		}
	}
	return filtered
}

// Keys returns the PairKeys in lexicographic order.
func (c Counts) Keys() []trait.PairKey {
	keys := make([]trait.PairKey, 0, len(c))
	for pk := range c {
		keys = append(keys, pk)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Partner is one edge of the partner graph: a trait seen together with the
// subject trait, and the pair's global count.
type Partner struct {
	Trait trait.Key `json:"trait"`
	Count int       `json:"count"`
}

// PartnerGraph builds bidirectional rarity-sorted partner lists from a
// (typically ceiling-filtered) pair-count map. Each list is ordered ascending
// by count, then by partner key.
func PartnerGraph(filtered Counts) map[trait.Key][]Partner {
	graph := make(map[trait.Key][]Partner)
	for pk, n := range filtered {
		a, b := pk.Split()
		graph[a] = append(graph[a], Partner{Trait: b, Count: n})
		graph[b] = append(graph[b], Partner{Trait: a, Count: n})
	}
	for key, partners := range graph {
		sort.Slice(partners, func(i, j int) bool {
			if partners[i].Count != partners[j].Count {
				return partners[i].Count < partners[j].Count
			}
			return partners[i].Trait < partners[j].Trait
		})
		graph[key] = partners
	}
	return graph
}
