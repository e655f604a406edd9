// Package tabular defines the worksheet-shaped backing store abstraction.
//
// Every backend models a section as a worksheet: row 1 is the header, data
// rows start at row 2 and are addressed by a 1-based position below the
// header. Positions are only valid until the next structural mutation of the
// section; deleting row N shifts every later row down by one.
package tabular

// Store is the interface for tabular section storage.
// Consumers should depend on this interface rather than a concrete backend
// to facilitate testing with in-memory or temp-file stores.
type Store interface {
	// Sections returns all section names in storage order.
	Sections() ([]string, error)
	// Header returns the header row of a section. A missing section or an
	// empty header yields an empty slice, not an error.
	Header(section string) ([]string, error)
	// SetHeader replaces the header row wholesale, creating the section if
	// it does not exist. The replacement is atomic per section.
	SetHeader(section string, fields []string) error
	// Rows returns all data rows in append order.
	Rows(section string) ([][]string, error)
	// AppendRow appends one data row and returns its 1-based position.
	AppendRow(section string, row []string) (int, error)
	// UpdateRow overwrites the data row at pos. Returns apperr.ErrNotFound
	// when pos is out of range.
	UpdateRow(section string, pos int, row []string) error
	// DeleteRow removes the data row at pos, shifting later rows down.
	// Returns apperr.ErrNotFound when pos is out of range.
	DeleteRow(section string, pos int) error
	// DeleteSection removes a section and all its rows.
	DeleteSection(section string) error
	// Close releases backend resources.
	Close() error
}
