package collection

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pulplabs/traitdex/codec"
	"github.com/pulplabs/traitdex/trait"
)

// MalformedInputError indicates an input file that exists but does not decode
// into the expected shape.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type MalformedInputError struct {
	Path  string
	cause error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input file %s: %v", e.Path, e.cause)
}

func (e *MalformedInputError) Unwrap() error { return e.cause }

// Loader reads and merges the collection input files.
type Loader struct {
	codec codec.Codec
}

// NewLoader creates a Loader decoding with the given codec.
// A nil codec falls back to codec.Default.
func NewLoader(c codec.Codec) *Loader {
	if c == nil {
		c = codec.Default
	}
	return &Loader{codec: c}
}

// metadataRecord matches the upstream collection-metadata format.
type metadataRecord struct {
	ID         int         `json:"id"`
	Image      string      `json:"image"`
	Attributes []attribute `json:"attributes"`
}

type attribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// analysisRecord matches the optional per-item analysis format.
type analysisRecord struct {
	NotableTraits []attribute `json:"notable_traits"`
}

// Load reads the metadata and rank files and merges them into one Collection.
// Items missing from the rank mapping get RankUnranked.
func (l *Loader) Load(metadataPath, ranksPath string) (*Collection, error) {
	var records []metadataRecord
	if err := l.readInto(metadataPath, &records); err != nil {
		return nil, err
	}

	// Rank arrays carry the global rank first; trailing elements are
	// upstream scoring detail and ignored here.
	var rankRows map[string][]float64
	if err := l.readInto(ranksPath, &rankRows); err != nil {
		return nil, err
	}
	ranks := make(map[int]int, len(rankRows))
	for rawID, row := range rankRows {
		id, err := strconv.Atoi(rawID)
		if err != nil {
			return nil, &MalformedInputError{Path: ranksPath, cause: fmt.Errorf("non-numeric item id %q", rawID)}
		}
		if len(row) == 0 {
			return nil, &MalformedInputError{Path: ranksPath, cause: fmt.Errorf("empty rank array for item %d", id)}
		}
		ranks[id] = int(row[0])
	}

	categorySet := make(map[string]struct{})
	items := make([]*Item, 0, len(records))
	for _, rec := range records {
		if rec.ID <= 0 {
			return nil, &MalformedInputError{Path: metadataPath, cause: fmt.Errorf("non-positive item id %d", rec.ID)}
		}
		it := &Item{
			ID:     rec.ID,
			Rank:   RankUnranked,
			Image:  rec.Image,
			Traits: make(map[string]TraitValue, len(rec.Attributes)),
		}
		if r, ok := ranks[rec.ID]; ok {
			it.Rank = r
		}
		for _, attr := range rec.Attributes {
			categorySet[attr.TraitType] = struct{}{}
			it.Traits[attr.TraitType] = TraitValue{
				Raw:        attr.Value,
				Normalized: trait.Normalize(attr.Value),
			}
		}
		items = append(items, it)
	}

	return &Collection{
		Items:      items,
		Categories: sortedCategories(categorySet),
	}, nil
}

// LoadProvenance reads the optional analysis file into a Provenance lookup.
// A missing file is not an error; it yields an empty lookup.
func (l *Loader) LoadProvenance(path string) (*Provenance, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Provenance{}, nil
	}

	var rows map[string]analysisRecord
	if err := l.readInto(path, &rows); err != nil {
		return nil, err
	}

	byItem := make(map[int]map[trait.Key]struct{}, len(rows))
	for rawID, rec := range rows {
		id, err := strconv.Atoi(rawID)
		if err != nil {
			return nil, &MalformedInputError{Path: path, cause: fmt.Errorf("non-numeric item id %q", rawID)}
		}
		keys := make(map[trait.Key]struct{}, len(rec.NotableTraits))
		for _, attr := range rec.NotableTraits {
			keys[trait.NewKey(attr.TraitType, attr.Value)] = struct{}{}
		}
		byItem[id] = keys
	}
	return &Provenance{byItem: byItem}, nil
}

func (l *Loader) readInto(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := l.codec.Unmarshal(data, v); err != nil {
		return &MalformedInputError{Path: path, cause: err}
	}
	return nil
}
