package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tovaren/raido/internal/entry"
	"github.com/tovaren/raido/internal/reminder"
	"github.com/tovaren/raido/internal/schema"
	"github.com/tovaren/raido/internal/sse"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(sch *schema.Service, entries *entry.Service, dispatcher reminder.Dispatcher, broker *sse.Broker, threshold int, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(sch, entries, dispatcher, broker, threshold)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Sections and schemas.
	r.Get("/sections", h.ListSections)
	r.Get("/sections/{section}/fields", h.GetFields)
	r.Put("/sections/{section}/fields", h.SetFields)
	r.Delete("/sections/{section}", h.DeleteSection)

	// Entries CRUD and filtering.
	r.Get("/sections/{section}/entries", h.ListEntries)
	r.Post("/sections/{section}/entries", h.AppendEntry)
	r.Put("/sections/{section}/entries/{id}", h.UpdateEntry)
	r.Delete("/sections/{section}/entries/{id}", h.DeleteEntry)
	r.Get("/sections/{section}/dimensions", h.Dimensions)

	// CSV export.
	r.Get("/sections/{section}/export", h.Export)
	r.Get("/export", h.ExportAll)

	// Reminders.
	r.Post("/reminders", h.CreateReminder)
	r.Post("/sections/{section}/entries/{id}/reminder", h.CreateEntryReminder)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
