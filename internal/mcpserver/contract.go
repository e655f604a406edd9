package mcpserver

// EntryFormatContract is the canonical description of how tracker entries
// are structured. It is exposed both as a tool and as an MCP resource so
// LLM clients can fetch it before writing entries.
const EntryFormatContract = `# Raido Entry Format Contract

## Sections and fields

A *section* is a named table (e.g. "Exams", "Expenses"). Each section has an
ordered *field list* that defines its columns. Field order matters: it is the
order values are stored and displayed in.

Set fields with ` + "`set_fields`" + ` using a comma-separated list:

    examname, date, tags, priority

## Entries

An *entry* is one row. Values are passed as a JSON object mapping field names
to string values:

    {"examname": "Algebra", "date": "2024-05-01", "tags": "math,core", "priority": "High"}

Rules:

- All values are strings. Numbers and dates go in as their string form.
- Fields missing from the object are stored as empty strings.
- Keys that are not in the section's field list are ignored.
- A section must have fields before entries can be added.

## Row positions

Entries are addressed by 1-based row position (` + "`row_id`" + `). Positions are
assigned in append order and **shift down after a delete**: deleting row 2
makes the old row 3 become row 2. Always ` + "`list_entries`" + ` again after a
delete before updating or deleting by position.

## Conventional fields

Some field names carry filtering semantics:

- A field whose name contains "date" holds dates. Prefer ` + "`YYYY-MM-DD`" + `.
- A field named "tags" holds a comma-separated tag list: ` + "`math,core,urgent`" + `.
- A field whose name contains "priority" holds a level such as High, Medium or Low.

## Reminders

` + "`create_reminder`" + ` schedules a one-hour calendar event for an entry.
Pass the start time as RFC 3339 with an offset, e.g. ` + "`2024-05-01T09:00:00+05:30`" + `.
`
