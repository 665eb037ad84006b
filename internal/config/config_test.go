package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
port: "8080"
databaseURL: "postgres://localhost/phytoguard"
geminiAPIKey: "file-key"
redisAddr: "localhost:6379"
tokenSecret: "0123456789abcdef0123456789abcdef"
visionModels:
  - gemini-2.0-flash
`

func TestLoadParsesYAML(t *testing.T) {
	path := writeConfig(t, minimalConfig)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("port not parsed: %q", cfg.Port)
	}
	if len(cfg.VisionModels) != 1 || cfg.VisionModels[0] != "gemini-2.0-flash" {
		t.Fatalf("models not parsed: %#v", cfg.VisionModels)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, minimalConfig)
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("DATABASE_URL", "postgres://db.internal/phytoguard")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.GeminiAPIKey != "env-key" {
		t.Fatalf("env override ignored: %q", cfg.GeminiAPIKey)
	}
	if cfg.DatabaseURL != "postgres://db.internal/phytoguard" {
		t.Fatalf("env override ignored: %q", cfg.DatabaseURL)
	}
}

func TestLoadRejectsMissingRequiredFields(t *testing.T) {
	path := writeConfig(t, `
port: "8080"
databaseURL: "postgres://localhost/phytoguard"
redisAddr: "localhost:6379"
tokenSecret: "0123456789abcdef0123456789abcdef"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing geminiAPIKey")
	}
}

func TestLoadMissingFileIsError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
