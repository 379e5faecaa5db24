// Package family collects, per PairKey, the set of items exhibiting the pair
// and partitions all pairs into 256 hash-addressed shards.
//
// Shard routing must stay stable across runs and reimplementations: the
// presentation layer derives the shard file name from the PairKey alone.
package family

import (
	"fmt"
	"sort"

	"github.com/pulplabs/traitdex/collection"
	"github.com/pulplabs/traitdex/pairs"
	"github.com/pulplabs/traitdex/trait"
)

const (
	// ShardCount is the fixed number of family shards.
	ShardCount = 256

	// DefaultCap bounds each emitted family list.
	DefaultCap = 200
)

// ShardID folds the PairKey bytes through a 31-polynomial hash and keeps the
// low byte. Order-sensitive on purpose: it is the published routing function.
func ShardID(pk trait.PairKey) uint8 {
	var h uint32
	for i := 0; i < len(pk); i++ {
		h = h*31 + uint32(pk[i])
	}
	return uint8(h)
}

// ShardName returns the two-digit hex document name for a shard, "00".."ff".
func ShardName(id uint8) string {
	return fmt.Sprintf("%02x", id)
}

// Family is the (possibly truncated) member list of one PairKey, sorted by
// rank ascending with the missing-rank sentinel, then by item id.
type Family struct {
	Items     []int `json:"items"`
	Truncated bool  `json:"truncated,omitempty"`
	Total     int   `json:"total,omitempty"`
}

// Build collects families for every distinct PairKey over the strict item
// set, unfiltered by any count ceiling. Families longer than cap are cut to
// cap and carry a truncation marker with the true size; cap <= 0 selects
// DefaultCap.
func Build(items []*collection.Item, categories []string, cap int) map[trait.PairKey]*Family {
	if cap <= 0 {
		cap = DefaultCap
	}

	memberIDs := make(map[trait.PairKey][]int)
	for _, it := range items {
		for _, pk := range pairs.ItemPairKeys(it, categories) {
			memberIDs[pk] = append(memberIDs[pk], it.ID)
		}
	}

	rank := make(map[int]int, len(items))
	for _, it := range items {
		rank[it.ID] = it.Rank
	}

	families := make(map[trait.PairKey]*Family, len(memberIDs))
	for pk, ids := range memberIDs {
		sort.Slice(ids, func(i, j int) bool {
			if rank[ids[i]] != rank[ids[j]] {
				return rank[ids[i]] < rank[ids[j]]
			}
			return ids[i] < ids[j]
		})
		f := &Family{Items: ids}
		if len(ids) > cap {
			f.Items = ids[:cap]
			f.Truncated = true
			f.Total = len(ids)
		}
		families[pk] = f
	}
	return families
}

// Entry is one PairKey with its family, as placed into a shard document.
type Entry struct {
	Pair   trait.PairKey
	Family *Family
}

// GroupByShard partitions families into the 256 shard buckets, each bucket
// sorted by PairKey. Empty buckets stay empty; every shard document is
// written regardless so the output always spans 00..ff.
func GroupByShard(families map[trait.PairKey]*Family) [ShardCount][]Entry {
	var shards [ShardCount][]Entry
	for pk, f := range families {
		id := ShardID(pk)
		shards[id] = append(shards[id], Entry{Pair: pk, Family: f})
	}
	for i := range shards {
		sort.Slice(shards[i], func(a, b int) bool { return shards[i][a].Pair < shards[i][b].Pair })
	}
	return shards
}
