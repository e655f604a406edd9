// Package entry implements the Entry Store: CRUD over section rows, with
// values always resolved through the section's current field order.
package entry

import (
	"context"
	"fmt"

	"github.com/tovaren/raido/internal/apperr"
	"github.com/tovaren/raido/internal/schema"
	"github.com/tovaren/raido/internal/tabular"
)

// Entry is one record in a section. RowID is the 1-based data position below
// the header and is only valid until the next structural mutation of the
// section; callers must re-list after any delete.
type Entry struct {
	RowID  int               `json:"row_id"`
	Values map[string]string `json:"values"`
}

// Service coordinates schema lookups and row storage.
type Service struct {
	store  tabular.Store
	schema *schema.Service
}

// NewService creates an entry service over the given store and schema.
func NewService(store tabular.Store, sch *schema.Service) *Service {
	return &Service{store: store, schema: sch}
}

// List returns a section's entries in append order. Cells beyond the current
// schema are retained in storage but not addressable here; cells missing
// from short rows read as empty strings.
func (s *Service) List(ctx context.Context, section string) ([]Entry, error) {
	fields, err := s.schema.GetFields(ctx, section)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.Rows(section)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, len(rows))
	for i, row := range rows {
		entries[i] = Entry{RowID: i + 1, Values: resolve(fields, row)}
	}
	return entries, nil
}

// Get returns a single entry by row position.
func (s *Service) Get(ctx context.Context, section string, rowID int) (*Entry, error) {
	entries, err := s.List(ctx, section)
	if err != nil {
		return nil, err
	}
	if rowID < 1 || rowID > len(entries) {
		return nil, apperr.ErrNotFound
	}
	return &entries[rowID-1], nil
}

// Append serializes values in the schema's current field order (missing
// fields default to empty strings, unknown keys are ignored) and appends one
// row. Returns the new row's position.
func (s *Service) Append(ctx context.Context, section string, values map[string]string) (int, error) {
	row, err := s.serialize(ctx, section, values)
	if err != nil {
		return 0, err
	}
	return s.store.AppendRow(section, row)
}

// Update overwrites the entire row at rowID using the same field-order
// resolution as Append. Returns apperr.ErrNotFound when the position no
// longer exists.
func (s *Service) Update(ctx context.Context, section string, rowID int, values map[string]string) error {
	row, err := s.serialize(ctx, section, values)
	if err != nil {
		return err
	}
	return s.store.UpdateRow(section, rowID, row)
}

// Delete removes the row at rowID. All later positions shift down by one.
func (s *Service) Delete(_ context.Context, section string, rowID int) error {
	return s.store.DeleteRow(section, rowID)
}

func (s *Service) serialize(ctx context.Context, section string, values map[string]string) ([]string, error) {
	fields, err := s.schema.GetFields(ctx, section)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: section %q has no fields", apperr.ErrValidation, section)
	}
	row := make([]string, len(fields))
	for i, f := range fields {
		row[i] = values[f]
	}
	return row, nil
}

// resolve maps a stored row onto the current field list. With duplicate
// field names the first occurrence wins.
func resolve(fields []string, row []string) map[string]string {
	values := make(map[string]string, len(fields))
	for i, f := range fields {
		if _, ok := values[f]; ok {
			continue
		}
		if i < len(row) {
			values[f] = row[i]
		} else {
			values[f] = ""
		}
	}
	return values
}
