package invindex

import (
	"reflect"
	"testing"

	"github.com/pulplabs/traitdex/collection"
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

func TestBuild(t *testing.T) {
	items := []*collection.Item{
		item(1, 10, map[string]string{"Base": "Wojak", "Head": "Crown"}),
		item(2, 50, map[string]string{"Base": "Wojak", "Head": "Crown"}),
		item(3, 5, map[string]string{"Base": "Soyjak", "Head": "Crown"}),
	}
	idx := Build(items, categories)

	if got := idx.Postings(trait.Key("Head::Crown")); !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Errorf("Crown postings = %v", got)
	}
	if got := idx.Count(trait.Key("Base::Wojak")); got != 2 {
		t.Errorf("Wojak count = %d, want 2", got)
	}
	if got := idx.Postings(trait.Key("Base::Nope")); got != nil {
		t.Errorf("unknown key postings = %v, want nil", got)
	}

	keys := idx.Keys()
	want := []trait.Key{"Base::Soyjak", "Base::Wojak", "Head::Crown"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("Keys = %v, want %v", keys, want)
	}
}

func TestBuildDeduplicatesItems(t *testing.T) {
	// The same item listed twice must index once.
	dup := item(7, 1, map[string]string{"Base": "Wojak", "Head": "Crown"})
	idx := Build([]*collection.Item{dup, dup}, categories)

	if got := idx.Postings(trait.Key("Base::Wojak")); !reflect.DeepEqual(got, []int{7}) {
		t.Errorf("postings = %v, want [7]", got)
	}
	if got := idx.Count(trait.Key("Base::Wojak")); got != 1 {
		t.Errorf("count = %d, want 1", got)
	}
}

func TestCatalogOrdering(t *testing.T) {
	items := []*collection.Item{
		item(1, 1, map[string]string{"Base": "Wojak", "Head": "Crown"}),
		item(2, 2, map[string]string{"Base": "Wojak", "Head": "Halo"}),
		item(3, 3, map[string]string{"Base": "Soyjak", "Head": "Beanie"}),
	}
	catalog := Build(items, categories).Catalog()

	// Rarer first, count ties broken lexicographically.
	wantHead := []CatalogEntry{
		{Trait: "Beanie", Count: 1},
		{Trait: "Crown", Count: 1},
		{Trait: "Halo", Count: 1},
	}
	if !reflect.DeepEqual(catalog["Head"], wantHead) {
		t.Errorf("Head catalog = %v, want %v", catalog["Head"], wantHead)
	}

	wantBase := []CatalogEntry{
		{Trait: "Soyjak", Count: 1},
		{Trait: "Wojak", Count: 2},
	}
	if !reflect.DeepEqual(catalog["Base"], wantBase) {
		t.Errorf("Base catalog = %v, want %v", catalog["Base"], wantBase)
	}
}
