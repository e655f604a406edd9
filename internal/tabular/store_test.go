package tabular

import (
	"errors"
	"os"
	"testing"

	"github.com/tovaren/raido/internal/apperr"
)

// backends returns one constructor per local Store implementation so the
// same contract suite runs against both.
func backends(t *testing.T) map[string]func(t *testing.T) Store {
	t.Helper()
	return map[string]func(t *testing.T) Store{
		"sqlite": func(t *testing.T) Store {
			f, err := os.CreateTemp("", "raido-test-*.db")
			if err != nil {
				t.Fatal(err)
			}
			f.Close()
			t.Cleanup(func() { os.Remove(f.Name()) })

			s, err := OpenSQLite(f.Name())
			if err != nil {
				t.Fatalf("OpenSQLite: %v", err)
			}
			t.Cleanup(func() { s.Close() })
			return s
		},
		"workbook": func(t *testing.T) Store {
			s, err := NewWorkbook(t.TempDir())
			if err != nil {
				t.Fatalf("NewWorkbook: %v", err)
			}
			return s
		},
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			fields := []string{"ExamName", "Date", "Tags", "Priority"}
			if err := s.SetHeader("Exams", fields); err != nil {
				t.Fatalf("SetHeader: %v", err)
			}
			got, err := s.Header("Exams")
			if err != nil {
				t.Fatalf("Header: %v", err)
			}
			if len(got) != len(fields) {
				t.Fatalf("header = %v, want %v", got, fields)
			}
			for i := range fields {
				if got[i] != fields[i] {
					t.Errorf("header[%d] = %q, want %q", i, got[i], fields[i])
				}
			}
		})
	}
}

func TestHeaderMissingSectionIsEmpty(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			got, err := s.Header("nope")
			if err != nil {
				t.Fatalf("Header: %v", err)
			}
			if len(got) != 0 {
				t.Errorf("header = %v, want empty", got)
			}
		})
	}
}

func TestSetHeaderKeepsRows(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			_ = s.SetHeader("Jobs", []string{"Company", "Role"})
			if _, err := s.AppendRow("Jobs", []string{"Acme", "SRE"}); err != nil {
				t.Fatalf("AppendRow: %v", err)
			}
			if err := s.SetHeader("Jobs", []string{"Company", "Role", "Status"}); err != nil {
				t.Fatalf("SetHeader: %v", err)
			}
			rows, err := s.Rows("Jobs")
			if err != nil {
				t.Fatalf("Rows: %v", err)
			}
			if len(rows) != 1 || rows[0][0] != "Acme" {
				t.Errorf("rows = %v", rows)
			}
		})
	}
}

func TestAppendPositions(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			_ = s.SetHeader("Tasks", []string{"Name"})
			for i, want := range []int{1, 2, 3} {
				pos, err := s.AppendRow("Tasks", []string{string(rune('a' + i))})
				if err != nil {
					t.Fatalf("AppendRow: %v", err)
				}
				if pos != want {
					t.Errorf("pos = %d, want %d", pos, want)
				}
			}
		})
	}
}

func TestAppendWithoutHeader(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			if _, err := s.AppendRow("nope", []string{"x"}); !errors.Is(err, apperr.ErrNotFound) {
				t.Errorf("err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestDeleteShiftsPositions(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			_ = s.SetHeader("Tasks", []string{"Name"})
			for _, v := range []string{"one", "two", "three"} {
				_, _ = s.AppendRow("Tasks", []string{v})
			}
			if err := s.DeleteRow("Tasks", 2); err != nil {
				t.Fatalf("DeleteRow: %v", err)
			}
			rows, err := s.Rows("Tasks")
			if err != nil {
				t.Fatalf("Rows: %v", err)
			}
			if len(rows) != 2 {
				t.Fatalf("len = %d, want 2", len(rows))
			}
			// Former position-3 row is now addressable at position 2.
			if rows[1][0] != "three" {
				t.Errorf("rows[1] = %v, want [three]", rows[1])
			}
			if err := s.UpdateRow("Tasks", 2, []string{"three-edited"}); err != nil {
				t.Errorf("UpdateRow at shifted position: %v", err)
			}
		})
	}
}

func TestUpdateAndDeleteStalePosition(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			_ = s.SetHeader("Tasks", []string{"Name"})
			_, _ = s.AppendRow("Tasks", []string{"only"})

			if err := s.UpdateRow("Tasks", 2, []string{"x"}); !errors.Is(err, apperr.ErrNotFound) {
				t.Errorf("UpdateRow err = %v, want ErrNotFound", err)
			}
			if err := s.DeleteRow("Tasks", 0); !errors.Is(err, apperr.ErrNotFound) {
				t.Errorf("DeleteRow err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestSectionsAndDeleteSection(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			_ = s.SetHeader("Exams", []string{"Name"})
			_ = s.SetHeader("Jobs", []string{"Company"})

			sections, err := s.Sections()
			if err != nil {
				t.Fatalf("Sections: %v", err)
			}
			if len(sections) != 2 {
				t.Fatalf("sections = %v", sections)
			}

			if err := s.DeleteSection("Exams"); err != nil {
				t.Fatalf("DeleteSection: %v", err)
			}
			sections, _ = s.Sections()
			if len(sections) != 1 || sections[0] != "Jobs" {
				t.Errorf("sections = %v, want [Jobs]", sections)
			}
			if err := s.DeleteSection("Exams"); !errors.Is(err, apperr.ErrNotFound) {
				t.Errorf("second delete err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestWorkbookRejectsPathSection(t *testing.T) {
	s, err := NewWorkbook(t.TempDir())
	if err != nil {
		t.Fatalf("NewWorkbook: %v", err)
	}
	if err := s.SetHeader("../escape", []string{"a"}); err == nil {
		t.Error("expected error for section name with path separator")
	}
}

func TestWorkbookSeesExternalEdits(t *testing.T) {
	dir := t.TempDir()
	s, err := NewWorkbook(dir)
	if err != nil {
		t.Fatalf("NewWorkbook: %v", err)
	}
	// A file dropped in by an external tool is a section.
	if err := os.WriteFile(dir+"/Notes.csv", []byte("Title,Body\nhello,world\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	header, err := s.Header("Notes")
	if err != nil {
		t.Fatalf("Header: %v", err)
	}
	if len(header) != 2 || header[0] != "Title" {
		t.Errorf("header = %v", header)
	}
	rows, err := s.Rows("Notes")
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(rows) != 1 || rows[0][1] != "world" {
		t.Errorf("rows = %v", rows)
	}
}
