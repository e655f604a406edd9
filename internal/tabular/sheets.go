package tabular

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/tovaren/raido/internal/apperr"
)

// Sheets implements Store on a Google Spreadsheet, one worksheet per
// section. The spreadsheet is addressed by id, worksheet row 1 holds the
// header, and data rows start at row 2. All failures are reported as
// apperr.ErrExternal so callers can surface them without aborting the
// session.
type Sheets struct {
	svc           *sheets.Service
	spreadsheetID string
}

var _ Store = (*Sheets)(nil)

// NewSheets builds a Sheets store from a service-account credentials file.
func NewSheets(ctx context.Context, credentialsFile, spreadsheetID string) (*Sheets, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("tabular: read credentials file: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, b, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("tabular: parse credentials: %w", err)
	}
	svc, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("tabular: build sheets service: %w", err)
	}
	return &Sheets{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// Close is a no-op; the API client needs no teardown.
func (s *Sheets) Close() error { return nil }

// Sections returns worksheet titles in spreadsheet order.
func (s *Sheets) Sections() ([]string, error) {
	doc, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Do()
	if err != nil {
		return nil, external("list worksheets", err)
	}
	var out []string
	for _, sh := range doc.Sheets {
		if sh.Properties != nil {
			out = append(out, sh.Properties.Title)
		}
	}
	return out, nil
}

// Header returns worksheet row 1, or an empty slice when the worksheet does
// not exist or has no header yet.
func (s *Sheets) Header(section string) ([]string, error) {
	ok, _, err := s.findSheet(section)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []string{}, nil
	}
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rangeRef(section, "1:1")).Do()
	if err != nil {
		return nil, external("read header", err)
	}
	if len(resp.Values) == 0 {
		return []string{}, nil
	}
	return toStrings(resp.Values[0]), nil
}

// SetHeader replaces row 1 in one values update, creating the worksheet
// first when the section is new.
func (s *Sheets) SetHeader(section string, fields []string) error {
	ok, _, err := s.findSheet(section)
	if err != nil {
		return err
	}
	if !ok {
		req := &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: section},
				},
			}},
		}
		if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Do(); err != nil {
			return external("add worksheet", err)
		}
	}
	vr := &sheets.ValueRange{Values: [][]any{toValues(fields)}}
	_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rangeRef(section, "1:1"), vr).
		ValueInputOption("RAW").Do()
	if err != nil {
		return external("write header", err)
	}
	return nil
}

// Rows returns all data rows below the header.
func (s *Sheets) Rows(section string) ([][]string, error) {
	ok, _, err := s.findSheet(section)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.ErrNotFound
	}
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rangeRef(section, "A2:ZZ")).Do()
	if err != nil {
		return nil, external("read rows", err)
	}
	out := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		out = append(out, toStrings(row))
	}
	return out, nil
}

// AppendRow appends one data row and returns its 1-based position below the
// header. Single-user model: the position is derived from a read-then-append
// pair, which is the documented rowId drift window.
func (s *Sheets) AppendRow(section string, row []string) (int, error) {
	existing, err := s.Rows(section)
	if err != nil {
		return 0, err
	}
	vr := &sheets.ValueRange{Values: [][]any{toValues(row)}}
	_, err = s.svc.Spreadsheets.Values.Append(s.spreadsheetID, rangeRef(section, "A1"), vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Do()
	if err != nil {
		return 0, external("append row", err)
	}
	return len(existing) + 1, nil
}

// UpdateRow overwrites the physical worksheet row pos+1 (row 1 is the header).
func (s *Sheets) UpdateRow(section string, pos int, row []string) error {
	existing, err := s.Rows(section)
	if err != nil {
		return err
	}
	if pos < 1 || pos > len(existing) {
		return apperr.ErrNotFound
	}
	vr := &sheets.ValueRange{Values: [][]any{toValues(row)}}
	_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rangeRef(section, fmt.Sprintf("A%d", pos+1)), vr).
		ValueInputOption("RAW").Do()
	if err != nil {
		return external("update row", err)
	}
	return nil
}

// DeleteRow removes the physical worksheet row pos+1; the sheet shifts later
// rows up, which is exactly the positional-id invalidation the contract
// documents.
func (s *Sheets) DeleteRow(section string, pos int) error {
	ok, sheetID, err := s.findSheet(section)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrNotFound
	}
	existing, err := s.Rows(section)
	if err != nil {
		return err
	}
	if pos < 1 || pos > len(existing) {
		return apperr.ErrNotFound
	}
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(pos), // 0-based physical index; header is 0
					EndIndex:   int64(pos + 1),
				},
			},
		}},
	}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Do(); err != nil {
		return external("delete row", err)
	}
	return nil
}

// DeleteSection removes the worksheet.
func (s *Sheets) DeleteSection(section string) error {
	ok, sheetID, err := s.findSheet(section)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrNotFound
	}
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteSheet: &sheets.DeleteSheetRequest{SheetId: sheetID},
		}},
	}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Do(); err != nil {
		return external("delete worksheet", err)
	}
	return nil
}

// findSheet reports whether a worksheet with the given title exists and
// returns its sheet id.
func (s *Sheets) findSheet(section string) (bool, int64, error) {
	doc, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Do()
	if err != nil {
		return false, 0, external("list worksheets", err)
	}
	for _, sh := range doc.Sheets {
		if sh.Properties != nil && sh.Properties.Title == section {
			return true, sh.Properties.SheetId, nil
		}
	}
	return false, 0, nil
}

func external(op string, err error) error {
	return fmt.Errorf("%w: sheets %s: %v", apperr.ErrExternal, op, err)
}

func rangeRef(section, cells string) string {
	return fmt.Sprintf("'%s'!%s", section, cells)
}

func toValues(row []string) []any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}

func toStrings(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = fmt.Sprint(v)
	}
	return out
}
