package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	p := Load("")
	if p.Theme != defaultTheme || p.Mode != "" {
		t.Fatalf("prefs = %+v, want theme %q and no mode", p, defaultTheme)
	}
}

func TestLoad_ReadsDefaultLocation(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "mopidy-bridge")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "prefs.toml"), []byte("theme = \"Slate\"\nmode = \" Terminal \"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p := Load("")
	if p.Theme != "Slate" || p.Mode != "terminal" {
		t.Fatalf("prefs = %+v, want Slate/terminal", p)
	}
}

func TestUpdate_PreservesOtherFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "prefs.toml")
	if err := Save(path, Prefs{Theme: "Kanagawa", Mode: "ino"}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if err := Update(path, func(p *Prefs) { p.Theme = "Slate" }); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	p := Load(path)
	if p.Theme != "Slate" || p.Mode != "ino" {
		t.Fatalf("prefs = %+v, want Slate/ino", p)
	}
}

func TestLoad_BadFilesFallBackToDefault(t *testing.T) {
	for _, body := range []string{"theme = \"\"\n", "not valid toml {{{\n"} {
		path := filepath.Join(t.TempDir(), "prefs.toml")
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if p := Load(path); p.Theme != defaultTheme {
			t.Fatalf("Load(%q).Theme = %q, want %q", body, p.Theme, defaultTheme)
		}
	}
}
