package entry

import (
	"context"
	"errors"
	"testing"

	"github.com/tovaren/raido/internal/apperr"
	"github.com/tovaren/raido/internal/schema"
	"github.com/tovaren/raido/internal/tabular"
)

func testService(t *testing.T, fields ...string) (*Service, *schema.Service) {
	t.Helper()
	store, err := tabular.NewWorkbook(t.TempDir())
	if err != nil {
		t.Fatalf("NewWorkbook: %v", err)
	}
	sch := schema.NewService(store)
	if len(fields) > 0 {
		if err := sch.SetFields(context.Background(), "Exams", fields); err != nil {
			t.Fatalf("SetFields: %v", err)
		}
	}
	return NewService(store, sch), sch
}

func TestAppendResolvesBySchemaOrder(t *testing.T) {
	svc, _ := testService(t, "ExamName", "Date", "Tags", "Priority")
	ctx := context.Background()

	// Extra keys are ignored, missing keys default to "".
	id, err := svc.Append(ctx, "Exams", map[string]string{
		"Priority": "High",
		"ExamName": "Algebra",
		"Ignored":  "nope",
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if id != 1 {
		t.Errorf("id = %d, want 1", id)
	}

	entries, err := svc.List(ctx, "Exams")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len = %d", len(entries))
	}
	e := entries[0]
	if e.Values["ExamName"] != "Algebra" || e.Values["Priority"] != "High" {
		t.Errorf("values = %v", e.Values)
	}
	if e.Values["Date"] != "" || e.Values["Tags"] != "" {
		t.Errorf("missing fields should read empty, got %v", e.Values)
	}
	if _, ok := e.Values["Ignored"]; ok {
		t.Error("unknown key leaked into stored entry")
	}
}

func TestAppendWithoutSchema(t *testing.T) {
	svc, _ := testService(t)
	_, err := svc.Append(context.Background(), "Exams", map[string]string{"a": "b"})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestUpdateIsIdempotent(t *testing.T) {
	svc, _ := testService(t, "Name", "Status")
	ctx := context.Background()

	id, _ := svc.Append(ctx, "Exams", map[string]string{"Name": "v1"})
	values := map[string]string{"Name": "v2", "Status": "done"}

	if err := svc.Update(ctx, "Exams", id, values); err != nil {
		t.Fatalf("first Update: %v", err)
	}
	if err := svc.Update(ctx, "Exams", id, values); err != nil {
		t.Fatalf("second Update: %v", err)
	}

	got, err := svc.Get(ctx, "Exams", id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Values["Name"] != "v2" || got.Values["Status"] != "done" {
		t.Errorf("values = %v", got.Values)
	}
}

func TestUpdateStaleRowID(t *testing.T) {
	svc, _ := testService(t, "Name")
	ctx := context.Background()

	id, _ := svc.Append(ctx, "Exams", map[string]string{"Name": "only"})
	if err := svc.Delete(ctx, "Exams", id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Update(ctx, "Exams", id, map[string]string{"Name": "x"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, "Exams", id); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestDeleteShiftsRowIDs(t *testing.T) {
	svc, _ := testService(t, "Name")
	ctx := context.Background()

	for _, n := range []string{"one", "two", "three"} {
		_, _ = svc.Append(ctx, "Exams", map[string]string{"Name": n})
	}
	if err := svc.Delete(ctx, "Exams", 2); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	entries, _ := svc.List(ctx, "Exams")
	if len(entries) != 2 {
		t.Fatalf("len = %d", len(entries))
	}
	if entries[1].RowID != 2 || entries[1].Values["Name"] != "three" {
		t.Errorf("entries[1] = %+v, want RowID 2 Name three", entries[1])
	}
}

func TestSchemaChangeRemapsByPosition(t *testing.T) {
	svc, sch := testService(t, "Name", "Status")
	ctx := context.Background()

	_, _ = svc.Append(ctx, "Exams", map[string]string{"Name": "Algebra", "Status": "open"})

	// Extra stored cells beyond the new schema are retained but unaddressable.
	if err := sch.SetFields(ctx, "Exams", []string{"Name"}); err != nil {
		t.Fatalf("SetFields: %v", err)
	}
	entries, _ := svc.List(ctx, "Exams")
	if len(entries[0].Values) != 1 || entries[0].Values["Name"] != "Algebra" {
		t.Errorf("values = %v", entries[0].Values)
	}

	// A schema wider than stored rows reads the new field as empty.
	if err := sch.SetFields(ctx, "Exams", []string{"Name", "Status", "Score"}); err != nil {
		t.Fatalf("SetFields: %v", err)
	}
	entries, _ = svc.List(ctx, "Exams")
	if entries[0].Values["Score"] != "" {
		t.Errorf("Score = %q, want empty", entries[0].Values["Score"])
	}
	if entries[0].Values["Status"] != "open" {
		t.Errorf("Status = %q, want open (retained cell)", entries[0].Values["Status"])
	}
}
