package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	resetInviteEnv(t)

	tests := []struct {
		name         string
		configYAML   string
		wantErr      bool
		errSubstring string
		assert       func(t *testing.T, cfg appConfig)
	}{
		{
			name:       "defaults",
			configYAML: `log-level: info`,
			assert: func(t *testing.T, cfg appConfig) {
				t.Helper()
				if cfg.APIAddr != "127.0.0.1:3000" {
					t.Fatalf("APIAddr = %q", cfg.APIAddr)
				}
				if cfg.Backend != backendDuckDB {
					t.Fatalf("Backend = %q", cfg.Backend)
				}
				if !strings.HasSuffix(cfg.DBPath, "invite.duckdb") {
					t.Fatalf("DBPath = %q, want invite.duckdb default", cfg.DBPath)
				}
				if cfg.BackupEnabled {
					t.Fatal("backup should be disabled by default")
				}
			},
		},
		{
			name: "sqlite backend picks .db default path",
			configYAML: `
backend: sqlite
host: 0.0.0.0
api-port: 8080
`,
			assert: func(t *testing.T, cfg appConfig) {
				t.Helper()
				if !strings.HasSuffix(cfg.DBPath, "invite.db") {
					t.Fatalf("DBPath = %q, want invite.db default", cfg.DBPath)
				}
				if cfg.APIAddr != "0.0.0.0:8080" {
					t.Fatalf("APIAddr = %q", cfg.APIAddr)
				}
			},
		},
		{
			name: "explicit api-addr wins",
			configYAML: `
api-port: 8080
api-addr: 10.0.0.5:9999
`,
			assert: func(t *testing.T, cfg appConfig) {
				t.Helper()
				if cfg.APIAddr != "10.0.0.5:9999" {
					t.Fatalf("APIAddr = %q", cfg.APIAddr)
				}
			},
		},
		{
			name: "tilde paths expand",
			configYAML: `
db-path: ~/wedding/rsvps.duckdb
fragment-dir: ~/wedding/pages
`,
			assert: func(t *testing.T, cfg appConfig) {
				t.Helper()
				home, _ := os.UserHomeDir()
				if cfg.DBPath != filepath.Join(home, "wedding", "rsvps.duckdb") {
					t.Fatalf("DBPath = %q", cfg.DBPath)
				}
				if cfg.FragmentDir != filepath.Join(home, "wedding", "pages") {
					t.Fatalf("FragmentDir = %q", cfg.FragmentDir)
				}
			},
		},
		{
			name:         "unknown backend rejected",
			configYAML:   `backend: postgres`,
			wantErr:      true,
			errSubstring: "invalid backend",
		},
		{
			name:         "port out of range rejected",
			configYAML:   `api-port: 70000`,
			wantErr:      true,
			errSubstring: "invalid api-port",
		},
		{
			name: "invalid backup keep-last rejected",
			configYAML: `
backup-enabled: true
backup-keep-last: -1
`,
			wantErr:      true,
			errSubstring: "invalid backup-keep-last",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loadConfig(writeTempConfig(t, tt.configYAML))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errSubstring) {
					t.Fatalf("error = %q, want substring %q", err.Error(), tt.errSubstring)
				}
				return
			}
			if err != nil {
				t.Fatalf("loadConfig returned error: %v", err)
			}
			tt.assert(t, cfg)
		})
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	resetInviteEnv(t)
	t.Setenv("INVITE_BACKEND", "sqlite")
	t.Setenv("INVITE_ADMIN_PASSWORD", "novios")

	cfg, err := loadConfig(writeTempConfig(t, `backend: duckdb`))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Backend != backendSQLite {
		t.Fatalf("Backend = %q, want sqlite from env", cfg.Backend)
	}
	if cfg.AdminPassword != "novios" {
		t.Fatalf("AdminPassword = %q", cfg.AdminPassword)
	}
}

func TestBackendExt(t *testing.T) {
	if got := backendExt(backendSQLite); got != ".db" {
		t.Fatalf("sqlite ext = %q", got)
	}
	if got := backendExt(backendDuckDB); got != ".duckdb" {
		t.Fatalf("duckdb ext = %q", got)
	}
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(strings.TrimSpace(content)+"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func resetInviteEnv(t *testing.T) {
	t.Helper()

	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, "INVITE_") {
			continue
		}
		t.Setenv(key, value)
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}
}
