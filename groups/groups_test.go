package groups

import (
	"reflect"
	"testing"

	"github.com/pulplabs/traitdex/collection"
	"github.com/pulplabs/traitdex/pairs"
	"github.com/pulplabs/traitdex/trait"
)

func item(id, rank int, traits map[string]string) *collection.Item {
	it := &collection.Item{
		ID:     id,
		Rank:   rank,
		Traits: make(map[string]collection.TraitValue, len(traits)),
	}
	for c, v := range traits {
		it.Traits[c] = collection.TraitValue{Raw: v, Normalized: trait.Normalize(v)}
	}
	return it
}

var categories = []string{"Base", "Head"}

func analyze(items []*collection.Item, opts Options) *Result {
	global := pairs.Count(items, categories)
	return Analyze(items, categories, global, &collection.Provenance{}, opts)
}

func findGroup(gs []*Group, name string) *Group {
	for _, g := range gs {
		if g.Name == name {
			return g
		}
	}
	return nil
}

func TestAnalyzeScenario(t *testing.T) {
	items := []*collection.Item{
		item(1, 10, map[string]string{"Base": "Wojak", "Head": "Crown"}),
		item(2, 50, map[string]string{"Base": "Wojak", "Head": "Crown"}),
		item(3, 5, map[string]string{"Base": "Soyjak", "Head": "Crown"}),
	}
	res := analyze(items, Options{MinDrilldownSize: 1})

	crown := findGroup(res.Primary, "Head::Crown")
	if crown == nil {
		t.Fatal("missing Head::Crown primary group")
	}
	if !reflect.DeepEqual(crown.Members, []int{1, 2, 3}) {
		t.Errorf("Crown members = %v", crown.Members)
	}
	if len(crown.Entries) != 2 {
		t.Fatalf("Crown entries = %+v", crown.Entries)
	}

	// Soyjak pair is globally rarer and sorts first.
	first, second := crown.Entries[0], crown.Entries[1]
	if first.Pair != "Base::Soyjak||Head::Crown" || first.GlobalCount != 1 {
		t.Errorf("first entry = %+v", first)
	}
	if first.BestExample != 3 || first.BestRank != 5 {
		t.Errorf("first best example = %d rank %d, want item 3 rank 5", first.BestExample, first.BestRank)
	}
	if second.Pair != "Base::Wojak||Head::Crown" || second.GlobalCount != 2 {
		t.Errorf("second entry = %+v", second)
	}
	// Item 1 beats item 2 on rank.
	if second.BestExample != 1 || second.BestRank != 10 {
		t.Errorf("second best example = %d rank %d, want item 1 rank 10", second.BestExample, second.BestRank)
	}
}

func TestAnalyzeComparatorOrdering(t *testing.T) {
	items := []*collection.Item{
		item(1, 10, map[string]string{"Base": "Wojak", "Head": "Crown"}),
		item(2, 50, map[string]string{"Base": "Wojak", "Head": "Crown"}),
		item(3, 5, map[string]string{"Base": "Soyjak", "Head": "Crown"}),
		item(4, 7, map[string]string{"Base": "Soyjak", "Head": "Halo"}),
		item(5, 2, map[string]string{"Base": "Doomer", "Head": "Halo"}),
	}
	res := analyze(items, Options{MinDrilldownSize: 1})

	for _, view := range [][]*Group{res.Primary, res.Drilldown} {
		for _, g := range view {
			for i := 1; i < len(g.Entries); i++ {
				if entryLess(g.Entries[i], g.Entries[i-1]) {
					t.Errorf("group %s entries out of order at %d: %+v before %+v",
						g.Name, i, g.Entries[i-1], g.Entries[i])
				}
			}
		}
	}
}

func TestDrilldownMinimumSize(t *testing.T) {
	// Four members share the joint pair; below the default minimum of 5
	// the drilldown group must be entirely absent, not present empty.
	var items []*collection.Item
	for id := 1; id <= 4; id++ {
		items = append(items, item(id, id, map[string]string{"Base": "Wojak", "Head": "Crown"}))
	}
	res := analyze(items, Options{})

	if g := findGroup(res.Drilldown, "Base::Wojak||Head::Crown"); g != nil {
		t.Errorf("drilldown group with 4 members present: %+v", g)
	}
	// Primary groups carry no minimum.
	if findGroup(res.Primary, "Base::Wojak") == nil {
		t.Error("missing primary group")
	}
}

func TestTopPairsTruncation(t *testing.T) {
	items := []*collection.Item{
		item(1, 1, map[string]string{"Base": "Wojak", "Head": "Crown"}),
		item(2, 2, map[string]string{"Base": "Wojak", "Head": "Halo"}),
		item(3, 3, map[string]string{"Base": "Wojak", "Head": "Beanie"}),
	}
	res := analyze(items, Options{TopPairs: 2})

	wojak := findGroup(res.Primary, "Base::Wojak")
	if len(wojak.Entries) != 2 {
		t.Errorf("entries = %d, want truncation to 2", len(wojak.Entries))
	}
}

func TestDisplayTextAndProvenance(t *testing.T) {
	it := item(1, 1, map[string]string{"Base": "Wojak", "Head": "Devil’s Horns"})
	it.Traits["Head"] = collection.TraitValue{Raw: "Devil’s  Horns", Normalized: trait.Normalize("Devil’s  Horns")}
	items := []*collection.Item{it}

	prov := collection.NewProvenance(map[int][]trait.Key{
		1: {trait.NewKey("Base", "Wojak")},
	})
	global := pairs.Count(items, categories)
	res := Analyze(items, categories, global, prov, Options{MinDrilldownSize: 1})

	g := findGroup(res.Primary, "Base::Wojak")
	if len(g.Entries) != 1 {
		t.Fatalf("entries = %+v", g.Entries)
	}
	e := g.Entries[0]
	// Display text is the raw pre-normalization value.
	if e.DisplayA != "Wojak" || e.DisplayB != "Devil’s  Horns" {
		t.Errorf("display = %q / %q", e.DisplayA, e.DisplayB)
	}
	if !e.ProvenanceBonus {
		t.Error("missing provenance bonus")
	}
}

func TestSentinelFormsNoGroups(t *testing.T) {
	items := []*collection.Item{
		item(1, 1, map[string]string{"Base": "Wojak", "Head": ""}),
	}
	res := analyze(items, Options{MinDrilldownSize: 1})

	if g := findGroup(res.Primary, "Head::None"); g != nil {
		t.Errorf("sentinel primary group present: %+v", g)
	}
	if len(res.Drilldown) != 0 {
		t.Errorf("drilldown groups from sentinel: %+v", res.Drilldown)
	}
}
