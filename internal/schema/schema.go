// Package schema implements the Schema Store: section names mapped to their
// ordered field lists, persisted as header rows in the tabular store.
package schema

import (
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/tovaren/raido/internal/apperr"
	"github.com/tovaren/raido/internal/tabular"
)

// Service owns field-order truth. Field order defines serialization order
// for every entry row; replacing a header wholesale is the only way to
// change it.
//
// Duplicate field names are accepted by SetFields because the backing sheet
// accepts them, but lookups downstream resolve to the first occurrence only.
type Service struct {
	store tabular.Store
}

// NewService creates a schema service over the given store.
func NewService(store tabular.Store) *Service {
	return &Service{store: store}
}

// ListSections returns section names in storage order. Side-effect-free.
func (s *Service) ListSections(_ context.Context) ([]string, error) {
	sections, err := s.store.Sections()
	if err != nil {
		return nil, err
	}
	if sections == nil {
		sections = []string{}
	}
	return sections, nil
}

// GetFields returns the ordered field list of a section. A missing section
// or empty header yields an empty slice, not an error, so callers can offer
// "this section has no fields yet" UX.
func (s *Service) GetFields(_ context.Context, section string) ([]string, error) {
	return s.store.Header(section)
}

// SetFields replaces the section's field list wholesale. Names are trimmed;
// a list that is empty after trimming is rejected with apperr.ErrValidation.
// Creates the section when it does not exist yet.
func (s *Service) SetFields(_ context.Context, section string, fields []string) error {
	if err := validateSection(section); err != nil {
		return err
	}
	cleaned := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			cleaned = append(cleaned, f)
		}
	}
	if len(cleaned) == 0 {
		return fmt.Errorf("%w: at least one non-empty field name is required", apperr.ErrValidation)
	}
	return s.store.SetHeader(section, cleaned)
}

// DeleteSection removes a section and all its entries.
func (s *Service) DeleteSection(_ context.Context, section string) error {
	if err := validateSection(section); err != nil {
		return err
	}
	return s.store.DeleteSection(section)
}

// ParseFieldList splits comma-separated field input ("examname, date, score")
// into trimmed names, dropping empties.
func ParseFieldList(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func validateSection(section string) error {
	if err := validation.Validate(section,
		validation.Required,
		validation.Length(1, 128),
	); err != nil {
		return fmt.Errorf("%w: section name: %v", apperr.ErrValidation, err)
	}
	return nil
}
