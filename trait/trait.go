// Package trait defines the canonical identifiers the whole pipeline keys on:
// normalized attribute values, TraitKeys and PairKeys.
//
// A TraitKey identifies one attribute instance ("Base::Wojak"). A PairKey
// identifies an unordered pair of TraitKeys from different categories; the two
// keys are sorted before joining, so PairKeyOf(a, b) == PairKeyOf(b, a) by
// construction.
//
// Separators: "::" inside a TraitKey, "||" between the two TraitKeys of a
// PairKey. Normalized values cannot contain either sequence because category
// names are controlled upstream and normalization collapses whitespace only.
package trait

import "strings"

// Sentinel is the placeholder value for a missing or non-string attribute.
const Sentinel = "None"

const (
	// KeySeparator joins category and normalized value into a TraitKey.
	KeySeparator = "::"

	// PairSeparator joins the two sorted TraitKeys of a PairKey.
	PairSeparator = "||"
)

// Key is a category plus normalized attribute value, e.g. "Head::Crown".
type Key string

// PairKey is the order-independent identifier of two Keys from different
// categories, e.g. "Base::Wojak||Head::Crown".
type PairKey string

// asciiReplacer maps typographic quotes, apostrophes and dashes to their
// canonical ASCII equivalents.
var asciiReplacer = strings.NewReplacer(
	"‘", "'", // left single quote
	"’", "'", // right single quote
	"‛", "'", // reversed single quote
	"′", "'", // prime
	"“", `"`, // left double quote
	"”", `"`, // right double quote
	"″", `"`, // double prime
	"–", "-", // en dash
	"—", "-", // em dash
	"−", "-", // minus sign
)

// Normalize canonicalizes a raw attribute value.
//
// Empty or whitespace-only input yields Sentinel. Otherwise the value is
// trimmed, internal whitespace runs collapse to single spaces, and
// typographic punctuation maps to ASCII. Normalize is idempotent:
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(value string) string {
	fields := strings.Fields(asciiReplacer.Replace(value))
	if len(fields) == 0 {
		return Sentinel
	}
	return strings.Join(fields, " ")
}

// NewKey builds the TraitKey for a category and raw value, normalizing the
// value first.
func NewKey(category, value string) Key {
	return Key(category + KeySeparator + Normalize(value))
}

// Category returns the category half of the key.
func (k Key) Category() string {
	c, _, _ := strings.Cut(string(k), KeySeparator)
	return c
}

// Value returns the normalized value half of the key.
func (k Key) Value() string {
	_, v, _ := strings.Cut(string(k), KeySeparator)
	return v
}

// IsSentinel reports whether the key carries the missing-value placeholder.
func (k Key) IsSentinel() bool {
	return k.Value() == Sentinel
}

// PairKeyOf combines two TraitKeys into a commutative PairKey.
func PairKeyOf(a, b Key) PairKey {
	if b < a {
		a, b = b, a
	}
	return PairKey(string(a) + PairSeparator + string(b))
}

// Split returns the two TraitKeys of the pair in their stored (sorted) order.
func (p PairKey) Split() (Key, Key) {
	a, b, _ := strings.Cut(string(p), PairSeparator)
	return Key(a), Key(b)
}
