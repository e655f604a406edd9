package api

import (
	"time"

	"github.com/tovaren/raido/internal/entry"
	"github.com/tovaren/raido/internal/filter"
)

// SectionListResponse wraps the section listing.
type SectionListResponse struct {
	Sections []string `json:"sections"`
}

// FieldsResponse is the field list of one section.
type FieldsResponse struct {
	Section string   `json:"section"`
	Fields  []string `json:"fields"`
}

// SetFieldsRequest replaces a section's field list. Either Fields or the
// comma-separated FieldsCSV form is accepted; Fields wins when both are set.
type SetFieldsRequest struct {
	Fields    []string `json:"fields,omitempty"`
	FieldsCSV string   `json:"fields_csv,omitempty" example:"examname, date, score, status"`
}

// EntryListResponse wraps a (possibly filtered) entry listing.
type EntryListResponse struct {
	Entries []entry.Entry `json:"entries"`
	Total   int           `json:"total"`
}

// AppendEntryRequest carries the values of a new or updated entry. Keys not
// in the section's current schema are ignored; missing fields store as "".
type AppendEntryRequest struct {
	Values map[string]string `json:"values"`
}

// AppendEntryResponse returns the new entry's row position.
type AppendEntryResponse struct {
	RowID int `json:"row_id"`
}

// DimensionsResponse describes the filterable dimensions of a section.
type DimensionsResponse struct {
	filter.Dimensions
	DateBounds map[string]DateRange `json:"date_bounds,omitempty"`
}

// DateRange is an inclusive [from, to] calendar-date range.
type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ReminderRequest schedules one calendar event. Title defaults to the
// entry's first field value when the entry-scoped route is used.
type ReminderRequest struct {
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	When        time.Time `json:"when"`
}

// ReminderResponse returns the viewable link of the created event.
type ReminderResponse struct {
	Link string `json:"link"`
}
