// Package session tracks per-session selection state: at most one active
// edit target and one active reminder target, keyed by entry identity.
// Targets are cleared deterministically on commit or cancel, never left as
// ambient flags.
package session

import "sync"

// Target identifies one entry within a section. The row position goes stale
// after any structural mutation of the section, so a held target is only
// trustworthy until the next append or delete.
type Target struct {
	Section string `json:"section"`
	RowID   int    `json:"row_id"`
}

// State holds the selection state of one session.
type State struct {
	mu       sync.Mutex
	edit     *Target
	reminder *Target
}

// New creates empty session state.
func New() *State {
	return &State{}
}

// StartEdit records t as the active edit target, replacing any previous one.
func (s *State) StartEdit(t Target) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edit = &t
}

// EditTarget returns the active edit target, if any.
func (s *State) EditTarget() (Target, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.edit == nil {
		return Target{}, false
	}
	return *s.edit, true
}

// ClearEdit drops the active edit target. Called on commit and on cancel.
func (s *State) ClearEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edit = nil
}

// StartReminder records t as the active reminder target.
func (s *State) StartReminder(t Target) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reminder = &t
}

// ReminderTarget returns the active reminder target, if any.
func (s *State) ReminderTarget() (Target, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reminder == nil {
		return Target{}, false
	}
	return *s.reminder, true
}

// ClearReminder drops the active reminder target.
func (s *State) ClearReminder() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reminder = nil
}

// Invalidate drops any target referencing section. Called after structural
// mutations so stale positions are never acted on.
func (s *State) Invalidate(section string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.edit != nil && s.edit.Section == section {
		s.edit = nil
	}
	if s.reminder != nil && s.reminder.Section == section {
		s.reminder = nil
	}
}
