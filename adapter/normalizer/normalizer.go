// Package normalizer contains the default [domain.Normalizer]
// implementation, converting store-native temporal values to ISO-8601
// strings on reads and back on writes.
package normalizer

import (
	"regexp"
	"time"

	"github.com/porolink/porobase/domain"
)

// isoPrefix is the cheap screen applied before attempting a full parse.
// Anything that does not start like a date-time stays untouched.
var isoPrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T`)

// parseLayouts lists the accepted incoming string forms, most specific
// first. Parsing is best effort: a string that matches the prefix but none
// of the layouts is kept as a plain string.
var parseLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// Normalizer implements [domain.Normalizer].
type Normalizer struct{}

// NewNormalizer returns a new implementation of [domain.Normalizer].
func NewNormalizer() domain.Normalizer {
	return &Normalizer{}
}

// Normalize implements [domain.Normalizer]. It walks nested maps and
// slices, replacing every [domain.Timestamp] with its ISO string. The input
// is not mutated.
func (n *Normalizer) Normalize(data domain.M) domain.M {
	if data == nil {
		return nil
	}
	out := make(domain.M, len(data))
	for k, v := range data {
		out[k] = n.normalizeValue(v)
	}
	return out
}

func (n *Normalizer) normalizeValue(v any) any {
	switch t := v.(type) {
	case domain.Timestamp:
		return t.ISO()
	case domain.M:
		return n.Normalize(t)
	case map[string]any:
		return n.Normalize(domain.M(t))
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = n.normalizeValue(e)
		}
		return out
	default:
		return v
	}
}

// Denormalize implements [domain.Normalizer]. Only top-level fields are
// inspected, matching what callers actually write; nested structures pass
// through untouched.
func (n *Normalizer) Denormalize(data domain.M) domain.M {
	if data == nil {
		return nil
	}
	out := make(domain.M, len(data))
	for k, v := range data {
		if s, ok := v.(string); ok && isoPrefix.MatchString(s) {
			if t, ok := parseISO(s); ok {
				out[k] = domain.NewTimestamp(t)
				continue
			}
		}
		out[k] = v
	}
	return out
}

func parseISO(s string) (time.Time, bool) {
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
