package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	prefs := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if prefs.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want default %q", prefs.Theme, defaultTheme)
	}
	if prefs.View != defaultView {
		t.Fatalf("View = %q, want default %q", prefs.View, defaultView)
	}
}

func TestLoad_MalformedFileDegradesGracefully(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	if err := os.WriteFile(path, []byte("theme = [broken"), 0o644); err != nil {
		t.Fatalf("write prefs: %v", err)
	}
	prefs := Load(path)
	if prefs.Theme != defaultTheme || prefs.View != defaultView {
		t.Fatalf("malformed prefs not defaulted: %#v", prefs)
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.toml")

	if err := Save(path, Prefs{Theme: "Paper", View: "sync"}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	prefs := Load(path)
	if prefs.Theme != "Paper" {
		t.Fatalf("Theme = %q, want Paper", prefs.Theme)
	}
	if prefs.View != "sync" {
		t.Fatalf("View = %q, want sync", prefs.View)
	}
}

func TestLoad_BlankFieldsFallBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	if err := os.WriteFile(path, []byte("theme = \"  \"\nview = \"\"\n"), 0o644); err != nil {
		t.Fatalf("write prefs: %v", err)
	}
	prefs := Load(path)
	if prefs.Theme != defaultTheme || prefs.View != defaultView {
		t.Fatalf("blank prefs not defaulted: %#v", prefs)
	}
}
