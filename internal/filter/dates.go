package filter

import (
	"strings"
	"time"
)

// dateLayouts are tried in order. Users type dates free-form into text
// fields, so the set covers the formats the original sheets accumulated.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"02.01.2006",
	"01/02/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// ParseDate interprets a stored cell value as a calendar date. The false
// branch is the explicit ParseFailure of the error taxonomy; callers decide
// whether to exclude the entry or show it unfiltered. Never returns an error.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
