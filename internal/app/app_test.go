package app

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

// setTestEnv は到達できないDBを指す設定を環境変数に設定する。
func setTestEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", "1")
	t.Setenv("DB_NAME", "siteuser")
	t.Setenv("DB_USER", "siteuser")
	t.Setenv("PASSWORD", "secret")
	t.Setenv("DB_SSLMODE", "disable")
	t.Setenv("DB_TIMEZONE", "Europe/Berlin")
	t.Setenv("DB_CONNECT_TIMEOUT", "2s")
	t.Setenv("DB_STATEMENT_TIMEOUT", "")
	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("METRICS_TEXTFILE", "")
}

func TestInit_WithValidConfig_Succeeds(t *testing.T) {
	setTestEnv(t)

	var stdout, stderr bytes.Buffer
	a := New(&stdout, &stderr)
	if err := a.Init(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if a.cfg == nil {
		t.Fatal("expected non-nil config")
	}
	if a.cfg.DBHost != "127.0.0.1" {
		t.Errorf("DBHost = %q, want %q", a.cfg.DBHost, "127.0.0.1")
	}

	// ログはstderrにJSONで出力される
	slog.Default().Info("init test")
	var entry map[string]interface{}
	if err := json.Unmarshal(stderr.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log output, got error: %v\nraw: %s", err, stderr.String())
	}
	if entry["msg"] != "init test" {
		t.Errorf("msg = %q, want %q", entry["msg"], "init test")
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout should stay empty, got %q", stdout.String())
	}
}

func TestInit_WithMissingConfig_ReturnsError(t *testing.T) {
	setTestEnv(t)
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("DB_USER", "")

	var buf bytes.Buffer
	a := New(&buf, &buf)
	if err := a.Init(); err == nil {
		t.Fatal("expected error for missing required env vars, got nil")
	}
	if a.cfg != nil {
		t.Error("expected nil config on error")
	}
}

func TestInit_LoadsEnvFile(t *testing.T) {
	setTestEnv(t)
	t.Setenv("DB_NAME", "")
	os.Unsetenv("DB_NAME")

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("DB_NAME=fromfile\n"), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("DB_NAME") })

	var buf bytes.Buffer
	a := New(&buf, &buf)
	a.envFile = path
	if err := a.Init(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if a.cfg.DBName != "fromfile" {
		t.Errorf("DBName = %q, want %q", a.cfg.DBName, "fromfile")
	}
}

func TestInit_AppliesLogLevel(t *testing.T) {
	setTestEnv(t)
	t.Setenv("LOG_LEVEL", "error")

	var stdout, stderr bytes.Buffer
	a := New(&stdout, &stderr)
	if err := a.Init(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	slog.Default().Info("should be filtered")
	if stderr.Len() != 0 {
		t.Errorf("info log should be filtered at error level, got %s", stderr.String())
	}
}
