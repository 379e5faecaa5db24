package traitdex

import "time"

// FixedClock pins the generation timestamp so tests can compare artifact
// bytes across runs.
func FixedClock(at time.Time) Option {
	return withNow(func() time.Time { return at })
}
