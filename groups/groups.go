// Package groups implements the rare-pairings analysis: primary and
// drilldown group membership, in-group pair ranking and best-example
// selection.
//
// The analysis runs on the lenient item set. Global pair counts passed in
// must come from the same item set; mixing policies inside one artifact
// changes which pairs appear.
package groups

import (
	"sort"

	"github.com/pulplabs/traitdex/collection"
	"github.com/pulplabs/traitdex/pairs"
	"github.com/pulplabs/traitdex/trait"
)

const (
	// DefaultMinDrilldownSize drops drilldown groups with fewer members.
	// This is a lossy filter: dropped groups are absent from output
	// entirely, not emitted empty.
	DefaultMinDrilldownSize = 5

	// DefaultTopPairs truncates each group's ranked entry list.
	DefaultTopPairs = 50
)

// Options tune the analysis. The zero value selects the defaults.
type Options struct {
	MinDrilldownSize int
	TopPairs         int
}

func (o Options) withDefaults() Options {
	if o.MinDrilldownSize <= 0 {
		o.MinDrilldownSize = DefaultMinDrilldownSize
	}
	if o.TopPairs <= 0 {
		o.TopPairs = DefaultTopPairs
	}
	return o
}

// Entry is one ranked pair within a group.
type Entry struct {
	Pair            trait.PairKey `json:"pair"`
	GlobalCount     int           `json:"global_count"`
	GroupCount      int           `json:"group_count"`
	BestExample     int           `json:"best_example"`
	BestRank        int           `json:"best_rank"`
	DisplayA        string        `json:"display_a"`
	DisplayB        string        `json:"display_b"`
	ProvenanceBonus bool          `json:"provenance_bonus,omitempty"`
}

// Group is one identified item-id set with its ranked pair entries.
type Group struct {
	Name    string  `json:"-"`
	Members []int   `json:"items"`
	Entries []Entry `json:"pairs"`
}

// Result holds both group views, each sorted by group name.
type Result struct {
	Primary   []*Group
	Drilldown []*Group
}

// Analyze builds primary and drilldown groups over the given items.
//
// Primary groups exist per observed (category, value). Drilldown groups
// exist per joint value pair of two categories and are dropped below the
// minimum membership size. Sentinel values form no groups.
func Analyze(items []*collection.Item, categories []string, global pairs.Counts, prov *collection.Provenance, opts Options) *Result {
	opts = opts.withDefaults()

	byID := make(map[int]*collection.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	primary := make(map[string][]int)
	drilldown := make(map[string][]int)
	for _, it := range items {
		keys := it.Keys(categories)
		for i, a := range keys {
			if a.IsSentinel() {
				continue
			}
			primary[string(a)] = append(primary[string(a)], it.ID)
			for _, b := range keys[i+1:] {
				if b.IsSentinel() {
					continue
				}
				drilldown[string(trait.PairKeyOf(a, b))] = append(drilldown[string(trait.PairKeyOf(a, b))], it.ID)
			}
		}
	}

	res := &Result{}
	for name, members := range primary {
		res.Primary = append(res.Primary, buildGroup(name, members, byID, categories, global, prov, opts))
	}
	for name, members := range drilldown {
		if len(members) < opts.MinDrilldownSize {
			continue
		}
		res.Drilldown = append(res.Drilldown, buildGroup(name, members, byID, categories, global, prov, opts))
	}

	sort.Slice(res.Primary, func(i, j int) bool { return res.Primary[i].Name < res.Primary[j].Name })
	sort.Slice(res.Drilldown, func(i, j int) bool { return res.Drilldown[i].Name < res.Drilldown[j].Name })
	return res
}

// bestExample tracks the winning member per PairKey under the tie-break
// chain: lowest rank first (missing rank carries the sentinel), then lowest
// item id.
type bestExample struct {
	id   int
	rank int
}

func (b bestExample) beats(o bestExample) bool {
	if b.rank != o.rank {
		return b.rank < o.rank
	}
	return b.id < o.id
}

func buildGroup(name string, members []int, byID map[int]*collection.Item, categories []string, global pairs.Counts, prov *collection.Provenance, opts Options) *Group {
	sort.Ints(members)

	groupCounts := make(map[trait.PairKey]int)
	best := make(map[trait.PairKey]bestExample)
	firstMember := make(map[trait.PairKey]int)
	for _, id := range members {
		it := byID[id]
		for _, pk := range pairs.ItemPairKeys(it, categories) {
			groupCounts[pk]++
			cand := bestExample{id: id, rank: it.Rank}
			if cur, ok := best[pk]; !ok || cand.beats(cur) {
				best[pk] = cand
			}
			if _, ok := firstMember[pk]; !ok {
				firstMember[pk] = id
			}
		}
	}

	entries := make([]Entry, 0, len(groupCounts))
	for pk, n := range groupCounts {
		a, b := pk.Split()
		be := best[pk]
		e := Entry{
			Pair:        pk,
			GlobalCount: global[pk],
			GroupCount:  n,
			BestExample: be.id,
			BestRank:    be.rank,
		}
		if it := byID[firstMember[pk]]; it != nil {
			e.DisplayA = it.Traits[a.Category()].Raw
			e.DisplayB = it.Traits[b.Category()].Raw
		}
		if prov.Has(be.id, a) || prov.Has(be.id, b) {
			e.ProvenanceBonus = true
		}
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entryLess(entries[i], entries[j])
	})
	if len(entries) > opts.TopPairs {
		entries = entries[:opts.TopPairs]
	}

	return &Group{Name: name, Members: members, Entries: entries}
}

// entryLess is the 4-key comparator: global count, in-group count,
// best-example rank, then PairKey as the final deterministic tiebreak.
func entryLess(a, b Entry) bool {
	if a.GlobalCount != b.GlobalCount {
		return a.GlobalCount < b.GlobalCount
	}
	if a.GroupCount != b.GroupCount {
		return a.GroupCount < b.GroupCount
	}
	if a.BestRank != b.BestRank {
		return a.BestRank < b.BestRank
	}
	return a.Pair < b.Pair
}
