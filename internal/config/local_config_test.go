package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ".chanwork.yaml"), []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestLoadLocalConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
# local settings
actor: u1
db: "cw:cw@tcp(localhost:3306)/chanwork?parseTime=true"
channel: ch1
no-color: true
`)

	cfg := LoadLocalConfig(dir)
	if cfg.Actor != "u1" {
		t.Errorf("Actor = %q", cfg.Actor)
	}
	if cfg.Channel != "ch1" {
		t.Errorf("Channel = %q", cfg.Channel)
	}
	if !cfg.NoColor {
		t.Error("NoColor should be true")
	}
}

func TestLoadLocalConfigMissingFile(t *testing.T) {
	cfg := LoadLocalConfig(t.TempDir())
	if cfg == nil {
		t.Fatal("missing file must return an empty config, not nil")
	}
	if cfg.Actor != "" || cfg.DB != "" {
		t.Errorf("empty config expected, got %+v", cfg)
	}
}

func TestLoadLocalConfigInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "actor: [unclosed")

	cfg := LoadLocalConfig(dir)
	if cfg == nil || cfg.Actor != "" {
		t.Errorf("invalid yaml must yield an empty config, got %+v", cfg)
	}
}

func TestLoadLocalConfigWithEnv(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "actor: from-file\n")

	t.Setenv("CW_ACTOR", "from-env")
	t.Setenv("CW_DB", "dsn-from-env")

	cfg := LoadLocalConfigWithEnv(dir)
	if cfg.Actor != "from-env" {
		t.Errorf("Actor = %q, env must win", cfg.Actor)
	}
	if cfg.DB != "dsn-from-env" {
		t.Errorf("DB = %q", cfg.DB)
	}
}
