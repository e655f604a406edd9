// Package filter derives filterable dimensions from a section's schema and
// applies a conjunction of user-chosen predicates to a loaded entry set.
// Everything here is a pure function over (schema, entries).
package filter

import (
	"sort"
	"strings"
	"time"

	"github.com/tovaren/raido/internal/entry"
)

// DefaultThreshold is the maximum distinct-value count for a field to be
// offered as a generic filter; longer choice lists are unusable in the UI.
const DefaultThreshold = 50

// Dimensions describes which fields of a section are filterable and how.
//
// Classification is name-based and case-insensitive: a field name containing
// "date" is date-filterable, a field named exactly "tags" is the tag field,
// a name containing "priority" is a priority field, and anything else is
// generic when its distinct-value count stays below the threshold. A typed
// schema source can replace this inference without touching callers, since
// only Classify encodes the rules.
type Dimensions struct {
	DateFields     []string            `json:"date_fields"`
	TagField       string              `json:"tag_field,omitempty"`
	TagValues      []string            `json:"tag_values,omitempty"`
	PriorityFields []string            `json:"priority_fields"`
	Values         map[string][]string `json:"values"` // per priority/generic field, sorted
	GenericFields  []string            `json:"generic_fields"`
}

// Selection is the active filter state for one viewing session. All zero
// values mean "no filter"; active predicates combine by logical AND.
type Selection struct {
	DateField string    // date-range filter applies when non-empty
	From, To  time.Time // inclusive bounds, date precision
	Tags      []string  // entry matches when tag intersection is non-empty
	Priority  map[string][]string
	Generic   map[string][]string
}

// Active reports whether any predicate is set.
func (s Selection) Active() bool {
	return s.DateField != "" || len(s.Tags) > 0 || len(s.Priority) > 0 || len(s.Generic) > 0
}

// Classify derives the filterable dimensions for the given schema and
// entries. threshold <= 0 falls back to DefaultThreshold.
func Classify(fields []string, entries []entry.Entry, threshold int) Dimensions {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	dims := Dimensions{
		DateFields:     []string{},
		PriorityFields: []string{},
		GenericFields:  []string{},
		Values:         map[string][]string{},
	}
	for _, f := range fields {
		lower := strings.ToLower(f)
		switch {
		case strings.Contains(lower, "date"):
			dims.DateFields = append(dims.DateFields, f)
		case lower == "tags":
			if dims.TagField == "" {
				dims.TagField = f
				dims.TagValues = distinctTags(entries, f)
			}
		case strings.Contains(lower, "priority"):
			dims.PriorityFields = append(dims.PriorityFields, f)
			dims.Values[f] = distinct(entries, f)
		default:
			vals := distinct(entries, f)
			if len(vals) < threshold {
				dims.GenericFields = append(dims.GenericFields, f)
				dims.Values[f] = vals
			}
		}
	}
	return dims
}

// Apply returns the entries satisfying every active predicate of sel.
// Entries whose value for sel.DateField does not parse as a date are
// excluded from date-filtered results; with no date filter they pass.
func Apply(entries []entry.Entry, sel Selection) []entry.Entry {
	if !sel.Active() {
		return entries
	}
	out := make([]entry.Entry, 0, len(entries))
	for _, e := range entries {
		if matches(e, sel) {
			out = append(out, e)
		}
	}
	return out
}

func matches(e entry.Entry, sel Selection) bool {
	if sel.DateField != "" {
		d, ok := ParseDate(e.Values[sel.DateField])
		if !ok {
			return false
		}
		if !sel.From.IsZero() && dateOnly(d).Before(dateOnly(sel.From)) {
			return false
		}
		if !sel.To.IsZero() && dateOnly(d).After(dateOnly(sel.To)) {
			return false
		}
	}
	if len(sel.Tags) > 0 {
		tagField := tagFieldOf(e)
		if !intersects(SplitTags(e.Values[tagField]), sel.Tags) {
			return false
		}
	}
	for field, allowed := range sel.Priority {
		if !contains(allowed, e.Values[field]) {
			return false
		}
	}
	for field, allowed := range sel.Generic {
		if !contains(allowed, e.Values[field]) {
			return false
		}
	}
	return true
}

// DateBounds returns the min and max parseable dates of field across
// entries. ok is false when no value parses; callers must treat that as an
// empty result set, not an error.
func DateBounds(entries []entry.Entry, field string) (min, max time.Time, ok bool) {
	for _, e := range entries {
		d, parsed := ParseDate(e.Values[field])
		if !parsed {
			continue
		}
		d = dateOnly(d)
		if !ok {
			min, max, ok = d, d, true
			continue
		}
		if d.Before(min) {
			min = d
		}
		if d.After(max) {
			max = d
		}
	}
	return min, max, ok
}

// SplitTags parses a comma-separated tag list, trimming whitespace and
// dropping empties.
func SplitTags(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// tagFieldOf finds the entry's tag field by the same rule Classify uses.
func tagFieldOf(e entry.Entry) string {
	for f := range e.Values {
		if strings.EqualFold(f, "tags") {
			return f
		}
	}
	return "Tags"
}

func distinct(entries []entry.Entry, field string) []string {
	seen := make(map[string]struct{})
	for _, e := range entries {
		v := e.Values[field]
		if v == "" {
			continue
		}
		seen[v] = struct{}{}
	}
	return sorted(seen)
}

func distinctTags(entries []entry.Entry, field string) []string {
	seen := make(map[string]struct{})
	for _, e := range entries {
		for _, tag := range SplitTags(e.Values[field]) {
			seen[tag] = struct{}{}
		}
	}
	return sorted(seen)
}

func sorted(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func intersects(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
