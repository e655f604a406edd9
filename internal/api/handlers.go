package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tovaren/raido/internal/entry"
	"github.com/tovaren/raido/internal/export"
	"github.com/tovaren/raido/internal/filter"
	"github.com/tovaren/raido/internal/reminder"
	"github.com/tovaren/raido/internal/schema"
	"github.com/tovaren/raido/internal/sse"
)

// Handler holds API route handlers.
type Handler struct {
	schema     *schema.Service
	entries    *entry.Service
	dispatcher reminder.Dispatcher
	broker     *sse.Broker
	threshold  int
}

// NewHandler creates a new Handler. dispatcher and broker may be nil when
// reminders or SSE are not configured.
func NewHandler(sch *schema.Service, entries *entry.Service, dispatcher reminder.Dispatcher, broker *sse.Broker, threshold int) *Handler {
	return &Handler{
		schema:     sch,
		entries:    entries,
		dispatcher: dispatcher,
		broker:     broker,
		threshold:  threshold,
	}
}

func sectionParam(r *http.Request) string {
	return chi.URLParam(r, "section")
}

func rowParam(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid row id")
	}
	return id, nil
}

// ListSections handles GET /api/sections.
func (h *Handler) ListSections(w http.ResponseWriter, r *http.Request) {
	sections, err := h.schema.ListSections(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SectionListResponse{Sections: sections})
}

// GetFields handles GET /api/sections/{section}/fields. An unknown section
// yields an empty field list, not a 404, so clients can offer "this section
// has no fields yet" UX.
func (h *Handler) GetFields(w http.ResponseWriter, r *http.Request) {
	fields, err := h.schema.GetFields(r.Context(), sectionParam(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FieldsResponse{Section: sectionParam(r), Fields: fields})
}

// SetFields handles PUT /api/sections/{section}/fields.
func (h *Handler) SetFields(w http.ResponseWriter, r *http.Request) {
	section := sectionParam(r)
	var req SetFieldsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	fields := req.Fields
	if len(fields) == 0 {
		fields = schema.ParseFieldList(req.FieldsCSV)
	}
	if err := h.schema.SetFields(r.Context(), section, fields); err != nil {
		writeErr(w, err)
		return
	}
	if h.broker != nil {
		h.broker.PublishSectionEvent(section)
	}
	stored, err := h.schema.GetFields(r.Context(), section)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FieldsResponse{Section: section, Fields: stored})
}

// DeleteSection handles DELETE /api/sections/{section}.
func (h *Handler) DeleteSection(w http.ResponseWriter, r *http.Request) {
	section := sectionParam(r)
	if err := h.schema.DeleteSection(r.Context(), section); err != nil {
		writeErr(w, err)
		return
	}
	if h.broker != nil {
		h.broker.PublishSectionEvent(section)
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListEntries handles GET /api/sections/{section}/entries with optional
// filter predicates in the query string.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	section := sectionParam(r)
	entries, err := h.entries.List(r.Context(), section)
	if err != nil {
		writeErr(w, err)
		return
	}
	sel, err := selectionFromQuery(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	visible := filter.Apply(entries, sel)
	writeJSON(w, http.StatusOK, EntryListResponse{Entries: visible, Total: len(visible)})
}

// AppendEntry handles POST /api/sections/{section}/entries.
func (h *Handler) AppendEntry(w http.ResponseWriter, r *http.Request) {
	section := sectionParam(r)
	var req AppendEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	id, err := h.entries.Append(r.Context(), section, req.Values)
	if err != nil {
		writeErr(w, err)
		return
	}
	if h.broker != nil {
		h.broker.PublishEntryEvent("created", section, id)
	}
	writeJSON(w, http.StatusCreated, AppendEntryResponse{RowID: id})
}

// UpdateEntry handles PUT /api/sections/{section}/entries/{id}.
func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	section := sectionParam(r)
	id, err := rowParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	var req AppendEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.entries.Update(r.Context(), section, id, req.Values); err != nil {
		writeErr(w, err)
		return
	}
	if h.broker != nil {
		h.broker.PublishEntryEvent("updated", section, id)
	}
	got, err := h.entries.Get(r.Context(), section, id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, got)
}

// DeleteEntry handles DELETE /api/sections/{section}/entries/{id}.
// All positions after the deleted row shift down by one; clients must
// re-list rather than reuse stale row ids.
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	section := sectionParam(r)
	id, err := rowParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if err := h.entries.Delete(r.Context(), section, id); err != nil {
		writeErr(w, err)
		return
	}
	if h.broker != nil {
		h.broker.PublishEntryEvent("deleted", section, id)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Dimensions handles GET /api/sections/{section}/dimensions: the filterable
// dimensions plus value sets and date bounds the filter sidebar needs.
func (h *Handler) Dimensions(w http.ResponseWriter, r *http.Request) {
	section := sectionParam(r)
	fields, err := h.schema.GetFields(r.Context(), section)
	if err != nil {
		writeErr(w, err)
		return
	}
	entries, err := h.entries.List(r.Context(), section)
	if err != nil {
		writeErr(w, err)
		return
	}
	dims := filter.Classify(fields, entries, h.threshold)
	resp := DimensionsResponse{Dimensions: dims}
	for _, f := range dims.DateFields {
		min, max, ok := filter.DateBounds(entries, f)
		if !ok {
			continue
		}
		if resp.DateBounds == nil {
			resp.DateBounds = map[string]DateRange{}
		}
		resp.DateBounds[f] = DateRange{From: min.Format("2006-01-02"), To: max.Format("2006-01-02")}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Export handles GET /api/sections/{section}/export: CSV of the post-filter
// entry set, header row equal to the current schema order.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	section := sectionParam(r)
	fields, err := h.schema.GetFields(r.Context(), section)
	if err != nil {
		writeErr(w, err)
		return
	}
	entries, err := h.entries.List(r.Context(), section)
	if err != nil {
		writeErr(w, err)
		return
	}
	sel, err := selectionFromQuery(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	visible := filter.Apply(entries, sel)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_entries.csv"`, section))
	if err := export.WriteCSV(w, fields, visible); err != nil {
		writeErr(w, err)
	}
}

// ExportAll handles GET /api/export: a combined CSV across every section.
func (h *Handler) ExportAll(w http.ResponseWriter, r *http.Request) {
	sections, err := h.schema.ListSections(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	var combined []export.SectionEntries
	for _, s := range sections {
		fields, err := h.schema.GetFields(r.Context(), s)
		if err != nil {
			writeErr(w, err)
			return
		}
		entries, err := h.entries.List(r.Context(), s)
		if err != nil {
			writeErr(w, err)
			return
		}
		combined = append(combined, export.SectionEntries{Section: s, Fields: fields, Entries: entries})
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="all_sections.csv"`)
	if err := export.WriteCombinedCSV(w, combined); err != nil {
		writeErr(w, err)
	}
}

// CreateReminder handles POST /api/reminders.
func (h *Handler) CreateReminder(w http.ResponseWriter, r *http.Request) {
	var req ReminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	h.dispatch(w, r, req)
}

// CreateEntryReminder handles POST /api/sections/{section}/entries/{id}/reminder.
// The title defaults to the entry's first field value.
func (h *Handler) CreateEntryReminder(w http.ResponseWriter, r *http.Request) {
	section := sectionParam(r)
	id, err := rowParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	var req ReminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Title == "" {
		fields, err := h.schema.GetFields(r.Context(), section)
		if err != nil {
			writeErr(w, err)
			return
		}
		e, err := h.entries.Get(r.Context(), section, id)
		if err != nil {
			writeErr(w, err)
			return
		}
		if len(fields) > 0 {
			req.Title = e.Values[fields[0]]
		}
	}
	if req.Description == "" {
		req.Description = "Reminder from section " + section
	}
	h.dispatch(w, r, req)
}

func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request, req ReminderRequest) {
	if h.dispatcher == nil {
		writeJSON(w, http.StatusBadRequest, errorBody("reminders are not configured"))
		return
	}
	if req.Title == "" || req.When.IsZero() {
		writeJSON(w, http.StatusBadRequest, errorBody("title and when are required"))
		return
	}
	link, err := h.dispatcher.Create(r.Context(), reminder.Reminder{
		Title:       req.Title,
		Description: req.Description,
		When:        req.When,
	})
	if err != nil {
		// Non-fatal: surfaced to the client, session state stays usable.
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ReminderResponse{Link: link})
}

// selectionFromQuery builds the active filter state from the query string:
// date_field/from/to for the date range, repeated tag params, and repeated
// f.<Field>=value params for priority and generic membership filters.
func selectionFromQuery(q url.Values) (filter.Selection, error) {
	var sel filter.Selection

	if df := q.Get("date_field"); df != "" {
		sel.DateField = df
		if from := q.Get("from"); from != "" {
			t, ok := filter.ParseDate(from)
			if !ok {
				return sel, fmt.Errorf("unparseable 'from' date: %q", from)
			}
			sel.From = t
		}
		if to := q.Get("to"); to != "" {
			t, ok := filter.ParseDate(to)
			if !ok {
				return sel, fmt.Errorf("unparseable 'to' date: %q", to)
			}
			sel.To = t
		}
	}

	sel.Tags = q["tag"]

	for key, values := range q {
		name, ok := strings.CutPrefix(key, "f.")
		if !ok || name == "" || len(values) == 0 {
			continue
		}
		if strings.Contains(strings.ToLower(name), "priority") {
			if sel.Priority == nil {
				sel.Priority = map[string][]string{}
			}
			sel.Priority[name] = values
		} else {
			if sel.Generic == nil {
				sel.Generic = map[string][]string{}
			}
			sel.Generic[name] = values
		}
	}

	return sel, nil
}
