package session

import "testing"

func TestEditTargetLifecycle(t *testing.T) {
	s := New()
	if _, ok := s.EditTarget(); ok {
		t.Fatal("new session should have no edit target")
	}

	s.StartEdit(Target{Section: "Exams", RowID: 2})
	got, ok := s.EditTarget()
	if !ok || got.Section != "Exams" || got.RowID != 2 {
		t.Fatalf("target = %+v, ok = %v", got, ok)
	}

	// A new target replaces the old one; there is at most one.
	s.StartEdit(Target{Section: "Jobs", RowID: 1})
	got, _ = s.EditTarget()
	if got.Section != "Jobs" {
		t.Errorf("target = %+v", got)
	}

	s.ClearEdit()
	if _, ok := s.EditTarget(); ok {
		t.Error("target should be cleared")
	}
}

func TestReminderTargetIndependent(t *testing.T) {
	s := New()
	s.StartEdit(Target{Section: "Exams", RowID: 1})
	s.StartReminder(Target{Section: "Exams", RowID: 3})

	s.ClearEdit()
	if _, ok := s.ReminderTarget(); !ok {
		t.Error("clearing edit must not clear reminder")
	}
}

func TestInvalidateBySection(t *testing.T) {
	s := New()
	s.StartEdit(Target{Section: "Exams", RowID: 1})
	s.StartReminder(Target{Section: "Jobs", RowID: 2})

	s.Invalidate("Exams")
	if _, ok := s.EditTarget(); ok {
		t.Error("edit target in mutated section should be invalidated")
	}
	if _, ok := s.ReminderTarget(); !ok {
		t.Error("reminder target in other section should survive")
	}
}
