package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	dir := writeConfig(t, "languages: [fr, de]\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SourceLang != "en" {
		t.Errorf("SourceLang = %q, want en", cfg.SourceLang)
	}
	if cfg.TranslationsDir != "locales" {
		t.Errorf("TranslationsDir = %q, want locales", cfg.TranslationsDir)
	}
	if cfg.Provider != "openai" {
		t.Errorf("Provider = %q, want openai", cfg.Provider)
	}
}

func TestLoad_FullConfig(t *testing.T) {
	dir := writeConfig(t, `source_lang: en
languages: [fr, ja]
translations_dir: i18n
provider: anthropic
model: claude-3-5-haiku-latest
batch_size: 50
context: |-
  A task manager for veterinarians.
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BatchSize != 50 {
		t.Errorf("BatchSize = %d", cfg.BatchSize)
	}
	if cfg.Context != "A task manager for veterinarians." {
		t.Errorf("Context = %q", cfg.Context)
	}
	if got := cfg.LocalePath("fr"); filepath.Base(got) != "fr.json" || filepath.Base(filepath.Dir(got)) != "i18n" {
		t.Errorf("LocalePath(fr) = %q", got)
	}
	if filepath.Base(cfg.SourcePath()) != "en.json" {
		t.Errorf("SourcePath = %q", cfg.SourcePath())
	}
}

func TestLoad_MissingFileReturnsNil(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != nil {
		t.Error("expected nil config when no file exists")
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no languages", "provider: openai\n"},
		{"empty language", "languages: ['fr', '']\n"},
		{"source as target", "source_lang: en\nlanguages: [en, fr]\n"},
		{"negative batch size", "languages: [fr]\nbatch_size: -1\n"},
		{"bad yaml", "languages: [fr\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := writeConfig(t, tc.content)
			if _, err := Load(dir); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
