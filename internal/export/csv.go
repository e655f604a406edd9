// Package export renders entry sets as CSV, the download format of the
// entry viewer.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/tovaren/raido/internal/entry"
)

// WriteCSV writes a header row equal to the current schema order followed by
// one row per entry, UTF-8 encoded.
func WriteCSV(w io.Writer, fields []string, entries []entry.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(fields); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}
	for _, e := range entries {
		row := make([]string, len(fields))
		for i, f := range fields {
			row[i] = e.Values[f]
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export: write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SectionEntries pairs a section with its visible entries for combined export.
type SectionEntries struct {
	Section string
	Fields  []string
	Entries []entry.Entry
}

// WriteCombinedCSV writes a multi-section view: the header is the union of
// all section schemas, in first-seen order, prefixed by a Section column.
func WriteCombinedCSV(w io.Writer, sections []SectionEntries) error {
	header := []string{"Section"}
	seen := map[string]struct{}{}
	for _, s := range sections {
		for _, f := range s.Fields {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			header = append(header, f)
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}
	for _, s := range sections {
		for _, e := range s.Entries {
			row := make([]string, len(header))
			row[0] = s.Section
			for i, f := range header[1:] {
				row[i+1] = e.Values[f]
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("export: write row: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
