package main

import "testing"

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ADMIN_TELEGRAM_ID", "")
	t.Setenv("BANKBOOK_STATE_DIR", "")
	t.Setenv("TELEGRAM_DEBUG", "")

	cfg := loadConfig()
	if cfg.StateDir != defaultStateDir {
		t.Errorf("expected default state dir %q, got %q", defaultStateDir, cfg.StateDir)
	}
	if cfg.DSN != defaultStateDir+"/bankbook.db" {
		t.Errorf("expected the SQLite fallback DSN, got %q", cfg.DSN)
	}
	if cfg.AdminID != 0 {
		t.Errorf("expected no admin by default, got %d", cfg.AdminID)
	}
	if cfg.Debug {
		t.Error("expected debug off by default")
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token123")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/bankbook")
	t.Setenv("ADMIN_TELEGRAM_ID", "42")
	t.Setenv("BANKBOOK_STATE_DIR", "/tmp/bankbook")
	t.Setenv("TELEGRAM_DEBUG", "true")

	cfg := loadConfig()
	if cfg.Token != "token123" {
		t.Errorf("unexpected token %q", cfg.Token)
	}
	if cfg.DSN != "postgres://u:p@localhost/bankbook" {
		t.Errorf("unexpected DSN %q", cfg.DSN)
	}
	if cfg.AdminID != 42 {
		t.Errorf("unexpected admin id %d", cfg.AdminID)
	}
	if cfg.StateDir != "/tmp/bankbook" {
		t.Errorf("unexpected state dir %q", cfg.StateDir)
	}
	if !cfg.Debug {
		t.Error("expected debug enabled")
	}
}
