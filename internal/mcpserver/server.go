// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Raido tracker tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tovaren/raido/internal/entry"
	"github.com/tovaren/raido/internal/filter"
	"github.com/tovaren/raido/internal/reminder"
	"github.com/tovaren/raido/internal/schema"
	"github.com/tovaren/raido/internal/session"
)

// Server wraps the MCP server with Raido tools.
type Server struct {
	mcp        *server.MCPServer
	schema     *schema.Service
	entries    *entry.Service
	dispatcher reminder.Dispatcher
	state      *session.State
}

// New creates a new MCP server with all tracker tools registered.
// dispatcher may be nil when reminders are not configured.
func New(sch *schema.Service, entries *entry.Service, dispatcher reminder.Dispatcher) *Server {
	s := &Server{
		schema:     sch,
		entries:    entries,
		dispatcher: dispatcher,
		state:      session.New(),
	}

	s.mcp = server.NewMCPServer(
		"Raido",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_sections",
		mcp.WithDescription("List all tracker sections."),
	), s.listSections)

	s.mcp.AddTool(mcp.NewTool("get_fields",
		mcp.WithDescription("Get the ordered field list of a section."),
		mcp.WithString("section", mcp.Required(), mcp.Description("Section name")),
	), s.getFields)

	s.mcp.AddTool(mcp.NewTool("set_fields",
		mcp.WithDescription("Replace a section's field list wholesale. Creates the section "+
			"when it does not exist. Read the entry format contract first via the "+
			"get_entry_contract tool or the raido://entry-format resource."),
		mcp.WithString("section", mcp.Required(), mcp.Description("Section name")),
		mcp.WithString("fields", mcp.Required(), mcp.Description("Comma-separated field names (e.g. examname, date, tags, priority)")),
	), s.setFields)

	s.mcp.AddTool(mcp.NewTool("list_entries",
		mcp.WithDescription("List a section's entries, optionally narrowed by tags."),
		mcp.WithString("section", mcp.Required(), mcp.Description("Section name")),
		mcp.WithString("tags", mcp.Description("Optional comma-separated tags; entries matching any tag are returned")),
	), s.listEntries)

	s.mcp.AddTool(mcp.NewTool("add_entry",
		mcp.WithDescription("Append one entry to a section. Values is a JSON object mapping "+
			"field names to string values; fields missing from it store as empty strings."),
		mcp.WithString("section", mcp.Required(), mcp.Description("Section name")),
		mcp.WithString("values", mcp.Required(), mcp.Description(`JSON object, e.g. {"examname":"Algebra","date":"2024-05-01"}`)),
	), s.addEntry)

	s.mcp.AddTool(mcp.NewTool("update_entry",
		mcp.WithDescription("Overwrite the entry at a row position. Row positions shift after "+
			"every delete; list_entries again rather than reusing old positions."),
		mcp.WithString("section", mcp.Required(), mcp.Description("Section name")),
		mcp.WithNumber("row_id", mcp.Required(), mcp.Description("1-based row position from list_entries")),
		mcp.WithString("values", mcp.Required(), mcp.Description("JSON object of field values")),
	), s.updateEntry)

	s.mcp.AddTool(mcp.NewTool("delete_entry",
		mcp.WithDescription("Delete the entry at a row position. Later positions shift down by one."),
		mcp.WithString("section", mcp.Required(), mcp.Description("Section name")),
		mcp.WithNumber("row_id", mcp.Required(), mcp.Description("1-based row position from list_entries")),
	), s.deleteEntry)

	s.mcp.AddTool(mcp.NewTool("create_reminder",
		mcp.WithDescription("Create a one-hour calendar reminder for an entry."),
		mcp.WithString("section", mcp.Required(), mcp.Description("Section name")),
		mcp.WithNumber("row_id", mcp.Required(), mcp.Description("Entry row position")),
		mcp.WithString("when", mcp.Required(), mcp.Description("Start time, RFC 3339 (e.g. 2024-05-01T09:00:00+05:30)")),
		mcp.WithString("title", mcp.Description("Optional title; defaults to the entry's first field value")),
	), s.createReminder)

	s.mcp.AddTool(mcp.NewTool("get_entry_contract",
		mcp.WithDescription("Returns the canonical entry format contract. "+
			"Call this before adding or updating entries to ensure correct structure."),
	), s.getEntryContract)

	// Resource: entry format contract.
	s.mcp.AddResource(
		mcp.NewResource("raido://entry-format", "Entry Format Contract",
			mcp.WithResourceDescription("Canonical entry value format all tracker entries follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readEntryFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listSections(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sections, err := s.schema.ListSections(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(sections) == 0 {
		return mcp.NewToolResultText("no sections yet"), nil
	}
	return mcp.NewToolResultText(strings.Join(sections, "\n")), nil
}

func (s *Server) getFields(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	section, err := req.RequireString("section")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fields, err := s.schema.GetFields(ctx, section)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(fields) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("section %q has no fields yet", section)), nil
	}
	return mcp.NewToolResultText(strings.Join(fields, ", ")), nil
}

func (s *Server) setFields(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	section, err := req.RequireString("section")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := req.RequireString("fields")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.schema.SetFields(ctx, section, schema.ParseFieldList(raw)); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	// Field order changed: previously issued row positions stay valid but
	// the value mapping may not, so drop held targets.
	s.state.Invalidate(section)
	return mcp.NewToolResultText(fmt.Sprintf("fields updated for %q", section)), nil
}

func (s *Server) listEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	section, err := req.RequireString("section")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entries, err := s.entries.List(ctx, section)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if tags, tagErr := req.RequireString("tags"); tagErr == nil && tags != "" {
		entries = filter.Apply(entries, filter.Selection{Tags: filter.SplitTags(tags)})
	}
	out, _ := json.MarshalIndent(entries, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) addEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	section, err := req.RequireString("section")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	values, res := requireValues(req)
	if res != nil {
		return res, nil
	}
	id, err := s.entries.Append(ctx, section, values)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("added entry %d to %q", id, section)), nil
}

func (s *Server) updateEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	section, id, res := requireTarget(req)
	if res != nil {
		return res, nil
	}
	values, res := requireValues(req)
	if res != nil {
		return res, nil
	}
	s.state.StartEdit(session.Target{Section: section, RowID: id})
	if err := s.entries.Update(ctx, section, id, values); err != nil {
		s.state.ClearEdit()
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.state.ClearEdit()
	return mcp.NewToolResultText(fmt.Sprintf("updated entry %d in %q", id, section)), nil
}

func (s *Server) deleteEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	section, id, res := requireTarget(req)
	if res != nil {
		return res, nil
	}
	if err := s.entries.Delete(ctx, section, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	// Positions after the deleted row shifted; held targets are stale.
	s.state.Invalidate(section)
	return mcp.NewToolResultText(fmt.Sprintf("deleted entry %d from %q; remaining row positions have shifted", id, section)), nil
}

func (s *Server) createReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.dispatcher == nil {
		return mcp.NewToolResultError("reminders are not configured"), nil
	}
	section, id, res := requireTarget(req)
	if res != nil {
		return res, nil
	}
	rawWhen, err := req.RequireString("when")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	when, err := time.Parse(time.RFC3339, rawWhen)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("unparseable 'when': %v", err)), nil
	}

	title := ""
	if v, titleErr := req.RequireString("title"); titleErr == nil {
		title = v
	}
	if title == "" {
		fields, err := s.schema.GetFields(ctx, section)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		e, err := s.entries.Get(ctx, section, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if len(fields) > 0 {
			title = e.Values[fields[0]]
		}
	}

	s.state.StartReminder(session.Target{Section: section, RowID: id})
	defer s.state.ClearReminder()

	link, err := s.dispatcher.Create(ctx, reminder.Reminder{
		Title:       title,
		Description: "Reminder from section " + section,
		When:        when,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("event created: " + link), nil
}

func (s *Server) getEntryContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(EntryFormatContract), nil
}

func (s *Server) readEntryFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "raido://entry-format",
			MIMEType: "text/markdown",
			Text:     EntryFormatContract,
		},
	}, nil
}

func requireTarget(req mcp.CallToolRequest) (string, int, *mcp.CallToolResult) {
	section, err := req.RequireString("section")
	if err != nil {
		return "", 0, mcp.NewToolResultError(err.Error())
	}
	id, err := req.RequireInt("row_id")
	if err != nil {
		return "", 0, mcp.NewToolResultError(err.Error())
	}
	if id < 1 {
		return "", 0, mcp.NewToolResultError("row_id must be >= 1")
	}
	return section, id, nil
}

func requireValues(req mcp.CallToolRequest) (map[string]string, *mcp.CallToolResult) {
	raw, err := req.RequireString("values")
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	var values map[string]string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("values must be a JSON object of strings: %v", err))
	}
	return values, nil
}
