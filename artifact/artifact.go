// Package artifact serializes pipeline outputs as schema-versioned JSON
// documents with fully deterministic key order, written atomically.
//
// Go maps iterate in random order, so every map-shaped section of an
// artifact goes through OrderedMap: an explicit key/value sequence that
// marshals as a JSON object in insertion order. Identical inputs must
// produce byte-identical artifacts to keep presentation-layer diffs minimal.
package artifact

import (
	"bytes"
	"time"

	gojson "github.com/goccy/go-json"
)

// SchemaVersion is stamped into every document envelope.
const SchemaVersion = 1

// KV is one entry of an OrderedMap.
type KV struct {
	Key   string
	Value any
}

// OrderedMap marshals as a JSON object whose keys appear in slice order.
type OrderedMap []KV

// Set appends a key/value pair.
func (m *OrderedMap) Set(key string, value any) {
	*m = append(*m, KV{Key: key, Value: value})
}

// MarshalJSON implements json.Marshaler.
func (m OrderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := gojson.Marshal(kv.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := gojson.Marshal(kv.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// NewDocument builds a document envelope: schema version and generation
// timestamp first, then the payload fields in the given order.
func NewDocument(generatedAt time.Time, fields ...KV) OrderedMap {
	doc := OrderedMap{
		{Key: "schema_version", Value: SchemaVersion},
		{Key: "generated_at", Value: generatedAt.UTC().Format(time.RFC3339)},
	}
	return append(doc, fields...)
}
