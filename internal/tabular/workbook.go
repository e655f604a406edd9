package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tovaren/raido/internal/apperr"
)

// Workbook implements Store as a directory of CSV files, one file per
// section. The layout is deliberately spreadsheet-shaped: row 1 of each file
// is the header, later rows are data, and the section list is the directory
// listing. External tools may edit the files directly; see Watch.
type Workbook struct {
	root string // absolute path to the workbook directory
}

var _ Store = (*Workbook)(nil)

// NewWorkbook creates a Workbook rooted at the given directory.
// The directory must already exist.
func NewWorkbook(root string) (*Workbook, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("tabular: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("tabular: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("tabular: root is not a directory: %s", abs)
	}
	return &Workbook{root: abs}, nil
}

// Close is a no-op; the workbook holds no open handles between calls.
func (w *Workbook) Close() error { return nil }

// sectionPath maps a section name to its CSV file and rejects names that
// would escape the workbook directory.
func (w *Workbook) sectionPath(section string) (string, error) {
	if section == "" || strings.ContainsAny(section, `/\`) || section == "." || section == ".." {
		return "", fmt.Errorf("%w: invalid section name: %q", apperr.ErrValidation, section)
	}
	return filepath.Join(w.root, section+".csv"), nil
}

// Sections lists the CSV files in the workbook, sorted by name.
func (w *Workbook) Sections() ([]string, error) {
	entries, err := os.ReadDir(w.root)
	if err != nil {
		return nil, fmt.Errorf("tabular: read workbook dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		out = append(out, strings.TrimSuffix(e.Name(), ".csv"))
	}
	sort.Strings(out)
	return out, nil
}

// Header returns row 1 of the section file, or an empty slice when the file
// or the header row is missing.
func (w *Workbook) Header(section string) ([]string, error) {
	records, err := w.read(section)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return []string{}, nil
		}
		return nil, err
	}
	if len(records) == 0 {
		return []string{}, nil
	}
	return records[0], nil
}

// SetHeader replaces row 1, keeping existing data rows, and creates the file
// when the section is new. The rewrite is atomic (temp file then rename).
func (w *Workbook) SetHeader(section string, fields []string) error {
	records, err := w.read(section)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	if len(records) == 0 {
		records = [][]string{fields}
	} else {
		records[0] = fields
	}
	return w.write(section, records)
}

// Rows returns the data rows (everything below the header).
func (w *Workbook) Rows(section string) ([][]string, error) {
	records, err := w.read(section)
	if err != nil {
		return nil, err
	}
	if len(records) <= 1 {
		return nil, nil
	}
	return records[1:], nil
}

// AppendRow appends one data row. The section must already have a header.
func (w *Workbook) AppendRow(section string, row []string) (int, error) {
	records, err := w.read(section)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		// Row 1 is reserved for the header; appending data before a header
		// exists would be misread as one on the next load.
		return 0, apperr.ErrNotFound
	}
	records = append(records, row)
	if err := w.write(section, records); err != nil {
		return 0, err
	}
	return len(records) - 1, nil
}

// UpdateRow overwrites the data row at pos.
func (w *Workbook) UpdateRow(section string, pos int, row []string) error {
	records, err := w.read(section)
	if err != nil {
		return err
	}
	if pos < 1 || pos > len(records)-1 {
		return apperr.ErrNotFound
	}
	records[pos] = row
	return w.write(section, records)
}

// DeleteRow removes the data row at pos; later rows shift down by one.
func (w *Workbook) DeleteRow(section string, pos int) error {
	records, err := w.read(section)
	if err != nil {
		return err
	}
	if pos < 1 || pos > len(records)-1 {
		return apperr.ErrNotFound
	}
	records = append(records[:pos], records[pos+1:]...)
	return w.write(section, records)
}

// DeleteSection removes the section file.
func (w *Workbook) DeleteSection(section string) error {
	path, err := w.sectionPath(section)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return fmt.Errorf("tabular: delete section %s: %w", section, err)
	}
	return nil
}

func (w *Workbook) read(section string) ([][]string, error) {
	path, err := w.sectionPath(section)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("tabular: open %s: %w", section, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // externally edited files may have ragged rows
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("tabular: read %s: %w", section, err)
	}
	return records, nil
}

// write rewrites the section file atomically: tmp file → fsync → rename.
func (w *Workbook) write(section string, records [][]string) error {
	path, err := w.sectionPath(section)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(w.root, ".raido-tmp-*")
	if err != nil {
		return fmt.Errorf("tabular: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	cw := csv.NewWriter(tmp)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("tabular: write temp: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("tabular: flush temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("tabular: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("tabular: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("tabular: rename: %w", err)
	}
	success = true
	return nil
}
