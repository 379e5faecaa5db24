package collection

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pulplabs/traitdex/trait"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const metadataJSON = `[
	{"id": 1, "image": "ipfs://one", "attributes": [
		{"trait_type": "Base", "value": "Wojak"},
		{"trait_type": "Head", "value": " Crown "}
	]},
	{"id": 2, "attributes": [
		{"trait_type": "Base", "value": "Wojak"}
	]},
	{"id": 3, "attributes": [
		{"trait_type": "Base", "value": "Soyjak"},
		{"trait_type": "Head", "value": "Crown"}
	]}
]`

const ranksJSON = `{"1": [10, 0.5], "3": [5]}`

func TestLoaderMerge(t *testing.T) {
	dir := t.TempDir()
	metaPath := writeFile(t, dir, "metadata.json", metadataJSON)
	ranksPath := writeFile(t, dir, "ranks.json", ranksJSON)

	coll, err := NewLoader(nil).Load(metaPath, ranksPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(coll.Items) != 3 {
		t.Fatalf("got %d items, want 3", len(coll.Items))
	}
	if got := coll.Categories; len(got) != 2 || got[0] != "Base" || got[1] != "Head" {
		t.Errorf("Categories = %v", got)
	}

	it1 := coll.ItemByID(1)
	if it1.Rank != 10 {
		t.Errorf("item 1 rank = %d, want 10", it1.Rank)
	}
	if it1.Image != "ipfs://one" {
		t.Errorf("item 1 image = %q", it1.Image)
	}
	if tv := it1.Traits["Head"]; tv.Raw != " Crown " || tv.Normalized != "Crown" {
		t.Errorf("item 1 Head = %+v", tv)
	}

	// Item 2 is absent from the rank mapping.
	if got := coll.ItemByID(2).Rank; got != RankUnranked {
		t.Errorf("item 2 rank = %d, want sentinel %d", got, RankUnranked)
	}
}

func TestLoaderErrors(t *testing.T) {
	dir := t.TempDir()
	metaPath := writeFile(t, dir, "metadata.json", metadataJSON)

	t.Run("missing file", func(t *testing.T) {
		_, err := NewLoader(nil).Load(filepath.Join(dir, "nope.json"), metaPath)
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("want ErrNotExist, got %v", err)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		bad := writeFile(t, dir, "bad.json", "{not json")
		_, err := NewLoader(nil).Load(bad, bad)
		var malformed *MalformedInputError
		if !errors.As(err, &malformed) {
			t.Errorf("want MalformedInputError, got %v", err)
		}
	})

	t.Run("empty rank array", func(t *testing.T) {
		ranks := writeFile(t, dir, "ranks.json", `{"1": []}`)
		_, err := NewLoader(nil).Load(metaPath, ranks)
		var malformed *MalformedInputError
		if !errors.As(err, &malformed) {
			t.Errorf("want MalformedInputError, got %v", err)
		}
	})
}

func TestEligiblePolicies(t *testing.T) {
	dir := t.TempDir()
	metaPath := writeFile(t, dir, "metadata.json", metadataJSON)
	ranksPath := writeFile(t, dir, "ranks.json", ranksJSON)

	coll, err := NewLoader(nil).Load(metaPath, ranksPath)
	if err != nil {
		t.Fatal(err)
	}

	strict, skipped := coll.Eligible(PolicyStrict)
	if len(strict) != 2 {
		t.Errorf("strict items = %d, want 2", len(strict))
	}
	if len(skipped) != 1 || skipped[0] != 2 {
		t.Errorf("skipped = %v, want [2]", skipped)
	}

	lenient, skippedLenient := coll.Eligible(PolicyLenient)
	if len(lenient) != 3 || skippedLenient != nil {
		t.Fatalf("lenient items = %d skipped = %v", len(lenient), skippedLenient)
	}
	var it2 *Item
	for _, it := range lenient {
		if it.ID == 2 {
			it2 = it
		}
	}
	if got := it2.Traits["Head"].Normalized; got != trait.Sentinel {
		t.Errorf("lenient fill = %q, want sentinel", got)
	}

	// The original item must stay untouched.
	if _, ok := coll.ItemByID(2).Traits["Head"]; ok {
		t.Error("lenient fill mutated the original item")
	}
}

func TestLoadProvenance(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file is empty lookup", func(t *testing.T) {
		prov, err := NewLoader(nil).LoadProvenance(filepath.Join(dir, "nope.json"))
		if err != nil {
			t.Fatal(err)
		}
		if prov.Has(1, trait.NewKey("Base", "Wojak")) {
			t.Error("empty lookup reported a trait")
		}
	})

	t.Run("lookup", func(t *testing.T) {
		path := writeFile(t, dir, "analysis.json", `{
			"1": {"notable_traits": [{"trait_type": "Head", "value": "Crown"}]}
		}`)
		prov, err := NewLoader(nil).LoadProvenance(path)
		if err != nil {
			t.Fatal(err)
		}
		if !prov.Has(1, trait.NewKey("Head", "Crown")) {
			t.Error("missing expected trait")
		}
		if prov.Has(1, trait.NewKey("Base", "Wojak")) {
			t.Error("unexpected trait")
		}
		if prov.Has(2, trait.NewKey("Head", "Crown")) {
			t.Error("unexpected item")
		}
		if !prov.HasAny([]int{2, 1}, trait.NewKey("Head", "Crown")) {
			t.Error("HasAny missed item 1")
		}
	})
}
