package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/tovaren/raido/internal/filter"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Store backends.
const (
	BackendSQLite   = "sqlite"
	BackendWorkbook = "workbook"
	BackendSheets   = "sheets"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Store    StoreConfig       `yaml:"store"`
	Calendar CalendarConfig    `yaml:"calendar"`
	Auth     AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if err := c.Calendar.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// StoreConfig selects and configures the tabular backend.
//
// Backend controls where section tables live:
//   - "sqlite" (default): a single local SQLite database at SQLitePath.
//   - "workbook": one CSV file per section under WorkbookDir. External
//     edits to the files are picked up by the watcher.
//   - "sheets": a Google Spreadsheet, one worksheet per section.
type StoreConfig struct {
	Backend         string `yaml:"backend"`
	SQLitePath      string `yaml:"sqlite_path"`
	WorkbookDir     string `yaml:"workbook_dir"`
	CredentialsFile string `yaml:"credentials_file"`
	SpreadsheetID   string `yaml:"spreadsheet_id"`
	FilterThreshold int    `yaml:"filter_threshold"`
}

// Validate validates the store configuration.
func (c *StoreConfig) Validate() error {
	if c.Backend == "" {
		c.Backend = BackendSQLite
	}
	if c.FilterThreshold == 0 {
		c.FilterThreshold = filter.DefaultThreshold
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.Required, validation.In(BackendSQLite, BackendWorkbook, BackendSheets)),
		validation.Field(&c.FilterThreshold, validation.Min(1)),
	); err != nil {
		return err
	}
	switch c.Backend {
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("store: backend is %q but sqlite_path is empty", BackendSQLite)
		}
	case BackendWorkbook:
		if c.WorkbookDir == "" {
			return fmt.Errorf("store: backend is %q but workbook_dir is empty", BackendWorkbook)
		}
	case BackendSheets:
		if c.CredentialsFile == "" || c.SpreadsheetID == "" {
			return fmt.Errorf("store: backend is %q but credentials_file or spreadsheet_id is empty", BackendSheets)
		}
	}
	return nil
}

// CalendarConfig holds Google Calendar reminder configuration.
// Reminders are optional: with an empty CredentialsFile the dispatcher
// is not built and reminder endpoints report that reminders are off.
type CalendarConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	CalendarID      string `yaml:"calendar_id"`
	Timezone        string `yaml:"timezone"`
}

// Enabled returns true when reminder dispatch is configured.
func (c *CalendarConfig) Enabled() bool {
	return c.CredentialsFile != ""
}

// Validate validates the calendar configuration.
func (c *CalendarConfig) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.CalendarID == "" {
		c.CalendarID = "primary"
	}
	if c.Timezone == "" {
		c.Timezone = "Asia/Kolkata"
	}
	return nil
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Store: StoreConfig{
			Backend:         BackendSQLite,
			SQLitePath:      "./raido.db",
			FilterThreshold: filter.DefaultThreshold,
		},
		Calendar: CalendarConfig{
			CalendarID: "primary",
			Timezone:   "Asia/Kolkata",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
