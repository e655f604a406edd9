// Package reminder translates a selected entry into a single calendar event
// on an external calendar service.
package reminder

import (
	"context"
	"time"
)

// EventDuration is fixed policy: every reminder ends exactly one hour after
// it starts.
const EventDuration = time.Hour

// Reminder is a transient (title, timestamp) pair; it is never persisted.
type Reminder struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	When        time.Time `json:"when"`
}

// Dispatcher creates calendar events. Implementations wrap failures in
// apperr.ErrExternal; a failed dispatch must never abort the surrounding
// entry-listing flow.
type Dispatcher interface {
	// Create submits one event and returns a viewable link.
	Create(ctx context.Context, r Reminder) (string, error)
}
