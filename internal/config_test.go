package internal

import (
	"strings"
	"testing"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestStoreConfig_DefaultsToSQLite(t *testing.T) {
	cfg := StoreConfig{SQLitePath: "./x.db"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty backend should default to sqlite: %v", err)
	}
	if cfg.Backend != BackendSQLite {
		t.Errorf("backend = %q, want %q", cfg.Backend, BackendSQLite)
	}
	if cfg.FilterThreshold == 0 {
		t.Error("validate should fill in the default filter threshold")
	}
}

func TestStoreConfig_MissingBackendPath(t *testing.T) {
	tests := []struct {
		name string
		cfg  StoreConfig
	}{
		{"sqlite without path", StoreConfig{Backend: BackendSQLite}},
		{"workbook without dir", StoreConfig{Backend: BackendWorkbook}},
		{"sheets without spreadsheet", StoreConfig{Backend: BackendSheets, CredentialsFile: "creds.json"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestStoreConfig_InvalidBackend(t *testing.T) {
	cfg := StoreConfig{Backend: "excel"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid backend should fail validation")
	}
}

func TestCalendarConfig_DisabledWithoutCredentials(t *testing.T) {
	cfg := CalendarConfig{}
	if cfg.Enabled() {
		t.Error("empty credentials should mean disabled")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled calendar should pass: %v", err)
	}
}

func TestCalendarConfig_DefaultsFilledWhenEnabled(t *testing.T) {
	cfg := CalendarConfig{CredentialsFile: "creds.json"}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.CalendarID != "primary" {
		t.Errorf("calendar_id = %q, want primary", cfg.CalendarID)
	}
	if cfg.Timezone != "Asia/Kolkata" {
		t.Errorf("timezone = %q, want Asia/Kolkata", cfg.Timezone)
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestNewDefaultConfig_Valid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}
