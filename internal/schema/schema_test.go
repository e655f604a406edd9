package schema

import (
	"context"
	"errors"
	"testing"

	"github.com/tovaren/raido/internal/apperr"
	"github.com/tovaren/raido/internal/tabular"
)

func testService(t *testing.T) *Service {
	t.Helper()
	store, err := tabular.NewWorkbook(t.TempDir())
	if err != nil {
		t.Fatalf("NewWorkbook: %v", err)
	}
	return NewService(store)
}

func TestSetAndGetFields(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	fields := []string{"ExamName", "Date", "Tags", "Priority"}
	if err := svc.SetFields(ctx, "Exams", fields); err != nil {
		t.Fatalf("SetFields: %v", err)
	}
	got, err := svc.GetFields(ctx, "Exams")
	if err != nil {
		t.Fatalf("GetFields: %v", err)
	}
	if len(got) != len(fields) {
		t.Fatalf("fields = %v, want %v", got, fields)
	}
	for i := range fields {
		if got[i] != fields[i] {
			t.Errorf("fields[%d] = %q, want %q", i, got[i], fields[i])
		}
	}
}

func TestSetFieldsTrims(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	if err := svc.SetFields(ctx, "Jobs", []string{" Company ", "", "  ", "Role"}); err != nil {
		t.Fatalf("SetFields: %v", err)
	}
	got, _ := svc.GetFields(ctx, "Jobs")
	if len(got) != 2 || got[0] != "Company" || got[1] != "Role" {
		t.Errorf("fields = %v, want [Company Role]", got)
	}
}

func TestSetFieldsEmptyRejected(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	err := svc.SetFields(ctx, "Jobs", []string{"  ", ""})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
	err = svc.SetFields(ctx, "", []string{"a"})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("empty section err = %v, want ErrValidation", err)
	}
}

func TestGetFieldsMissingSection(t *testing.T) {
	svc := testService(t)
	got, err := svc.GetFields(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetFields: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("fields = %v, want empty", got)
	}
}

func TestListSections(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	sections, err := svc.ListSections(ctx)
	if err != nil {
		t.Fatalf("ListSections: %v", err)
	}
	if len(sections) != 0 {
		t.Fatalf("sections = %v, want empty", sections)
	}

	_ = svc.SetFields(ctx, "Exams", []string{"Name"})
	_ = svc.SetFields(ctx, "Jobs", []string{"Company"})
	sections, _ = svc.ListSections(ctx)
	if len(sections) != 2 {
		t.Errorf("sections = %v, want 2", sections)
	}
}

func TestParseFieldList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"examname, date, score", []string{"examname", "date", "score"}},
		{"a,,b, ,c", []string{"a", "b", "c"}},
		{"   ", nil},
		{"single", []string{"single"}},
	}
	for _, tt := range tests {
		got := ParseFieldList(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("ParseFieldList(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("ParseFieldList(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}
