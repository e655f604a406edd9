package tabular

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tovaren/raido/internal/apperr"
)

const sqliteSchemaSQL = `
CREATE TABLE IF NOT EXISTS headers (
	section TEXT PRIMARY KEY,
	fields  TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS section_rows (
	section TEXT NOT NULL,
	pos     INTEGER NOT NULL,
	cells   TEXT NOT NULL DEFAULT '[]',
	PRIMARY KEY (section, pos)
);

CREATE INDEX IF NOT EXISTS idx_section_rows_section ON section_rows(section);
`

// SQLite implements Store on a local SQLite database. It is the default
// backend: sections live in a headers table, data rows in a positional
// section_rows table whose pos column mirrors worksheet row order.
type SQLite struct {
	conn *sql.DB
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens (or creates) the database and applies the schema.
func OpenSQLite(dsn string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("tabular: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("tabular: ping: %w", err)
	}
	if _, err := conn.Exec(sqliteSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("tabular: apply schema: %w", err)
	}
	return &SQLite{conn: conn}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

// Sections returns section names in creation order.
func (s *SQLite) Sections() ([]string, error) {
	rows, err := s.conn.Query(`SELECT section FROM headers ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("tabular: sections: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// Header returns the stored header row, or an empty slice when the section
// does not exist.
func (s *SQLite) Header(section string) ([]string, error) {
	var raw string
	err := s.conn.QueryRow(`SELECT fields FROM headers WHERE section = ?`, section).Scan(&raw)
	if err == sql.ErrNoRows {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("tabular: header: %w", err)
	}
	return decodeCells(raw)
}

// SetHeader upserts the header row in a single statement, so readers never
// observe a partially written field list.
func (s *SQLite) SetHeader(section string, fields []string) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("tabular: encode header: %w", err)
	}
	_, err = s.conn.Exec(`
		INSERT INTO headers (section, fields) VALUES (?, ?)
		ON CONFLICT(section) DO UPDATE SET fields = excluded.fields
	`, section, string(raw))
	if err != nil {
		return fmt.Errorf("tabular: set header: %w", err)
	}
	return nil
}

// Rows returns all data rows ordered by position.
func (s *SQLite) Rows(section string) ([][]string, error) {
	if err := s.mustExist(section); err != nil {
		return nil, err
	}
	rows, err := s.conn.Query(`SELECT cells FROM section_rows WHERE section = ? ORDER BY pos`, section)
	if err != nil {
		return nil, fmt.Errorf("tabular: rows: %w", err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		cells, err := decodeCells(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, cells)
	}
	return out, rows.Err()
}

// AppendRow inserts a row at max(pos)+1 and returns that position.
func (s *SQLite) AppendRow(section string, row []string) (int, error) {
	if err := s.mustExist(section); err != nil {
		return 0, err
	}
	raw, err := json.Marshal(row)
	if err != nil {
		return 0, fmt.Errorf("tabular: encode row: %w", err)
	}

	tx, err := s.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("tabular: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	var pos int
	if err := tx.QueryRow(`SELECT COALESCE(MAX(pos), 0) + 1 FROM section_rows WHERE section = ?`, section).Scan(&pos); err != nil {
		return 0, fmt.Errorf("tabular: next pos: %w", err)
	}
	if _, err := tx.Exec(`INSERT INTO section_rows (section, pos, cells) VALUES (?, ?, ?)`, section, pos, string(raw)); err != nil {
		return 0, fmt.Errorf("tabular: append row: %w", err)
	}
	return pos, tx.Commit()
}

// UpdateRow overwrites the row at pos.
func (s *SQLite) UpdateRow(section string, pos int, row []string) error {
	raw, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("tabular: encode row: %w", err)
	}
	res, err := s.conn.Exec(`UPDATE section_rows SET cells = ? WHERE section = ? AND pos = ?`, string(raw), section, pos)
	if err != nil {
		return fmt.Errorf("tabular: update row: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// DeleteRow removes the row at pos and shifts later rows down by one, all in
// one transaction so positions never have gaps.
func (s *SQLite) DeleteRow(section string, pos int) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("tabular: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.Exec(`DELETE FROM section_rows WHERE section = ? AND pos = ?`, section, pos)
	if err != nil {
		return fmt.Errorf("tabular: delete row: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperr.ErrNotFound
	}
	// Shift via negated positions: a direct pos = pos - 1 can collide with
	// the (section, pos) primary key mid-statement.
	if _, err := tx.Exec(`UPDATE section_rows SET pos = -(pos - 1) WHERE section = ? AND pos > ?`, section, pos); err != nil {
		return fmt.Errorf("tabular: shift rows: %w", err)
	}
	if _, err := tx.Exec(`UPDATE section_rows SET pos = -pos WHERE section = ? AND pos < 0`, section); err != nil {
		return fmt.Errorf("tabular: shift rows: %w", err)
	}
	return tx.Commit()
}

// DeleteSection removes a section's header and all its rows.
func (s *SQLite) DeleteSection(section string) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("tabular: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.Exec(`DELETE FROM headers WHERE section = ?`, section)
	if err != nil {
		return fmt.Errorf("tabular: delete section: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperr.ErrNotFound
	}
	if _, err := tx.Exec(`DELETE FROM section_rows WHERE section = ?`, section); err != nil {
		return fmt.Errorf("tabular: delete section rows: %w", err)
	}
	return tx.Commit()
}

// mustExist maps a missing section to apperr.ErrNotFound.
func (s *SQLite) mustExist(section string) error {
	var one int
	err := s.conn.QueryRow(`SELECT 1 FROM headers WHERE section = ?`, section).Scan(&one)
	if err == sql.ErrNoRows {
		return apperr.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("tabular: lookup section: %w", err)
	}
	return nil
}

func decodeCells(raw string) ([]string, error) {
	var cells []string
	if err := json.Unmarshal([]byte(raw), &cells); err != nil {
		return nil, fmt.Errorf("tabular: decode cells: %w", err)
	}
	if cells == nil {
		cells = []string{}
	}
	return cells, nil
}
