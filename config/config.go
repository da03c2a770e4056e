// Package config — .rire.yaml configuration file support.
//
// A .rire.yaml file in the project root declares the source language, the
// target languages, the locale file directory, and the provider settings
// used for AI translation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the default config file name.
const FileName = ".rire.yaml"

// Config is the top-level .rire.yaml structure.
type Config struct {
	// SourceLang is the source language code (default "en").
	SourceLang string `yaml:"source_lang,omitempty"`
	// Languages is the list of target language codes.
	Languages []string `yaml:"languages"`
	// TranslationsDir is the directory containing locale JSON files,
	// relative to the config file (default "locales").
	TranslationsDir string `yaml:"translations_dir,omitempty"`
	// Provider is the AI provider ID (openai, anthropic, google, groq,
	// ollama, custom-openai). Default "openai".
	Provider string `yaml:"provider,omitempty"`
	// Model overrides the provider's default model.
	Model string `yaml:"model,omitempty"`
	// BaseURL overrides the provider's API base URL (custom-openai, ollama).
	BaseURL string `yaml:"base_url,omitempty"`
	// BatchSize is how many messages to translate per API call (0 = default).
	BatchSize int `yaml:"batch_size,omitempty"`
	// Context is free-text product context embedded in the translation
	// prompt. Empty means no context.
	Context string `yaml:"context,omitempty"`

	// root is the directory the config was loaded from.
	root string
}

// Load reads and validates .rire.yaml from the given directory.
// Returns nil (no error) if no config file exists.
func Load(rootDir string) (*Config, error) {
	path := filepath.Join(rootDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.root = rootDir
	cfg.applyDefaults()

	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.SourceLang == "" {
		c.SourceLang = "en"
	}
	if c.TranslationsDir == "" {
		c.TranslationsDir = "locales"
	}
	if c.Provider == "" {
		c.Provider = "openai"
	}
}

func (c *Config) validate(path string) error {
	if len(c.Languages) == 0 {
		return fmt.Errorf("%s: no target languages declared", path)
	}
	for _, lang := range c.Languages {
		if strings.TrimSpace(lang) == "" {
			return fmt.Errorf("%s: empty language code in languages list", path)
		}
		if lang == c.SourceLang {
			return fmt.Errorf("%s: source language %q listed as a target", path, lang)
		}
	}
	if c.BatchSize < 0 {
		return fmt.Errorf("%s: batch_size must not be negative", path)
	}
	return nil
}

// Root returns the directory the config was loaded from.
func (c *Config) Root() string {
	return c.root
}

// AbsTranslationsDir returns the absolute locale directory.
func (c *Config) AbsTranslationsDir() string {
	abs, err := filepath.Abs(filepath.Join(c.root, c.TranslationsDir))
	if err != nil {
		return filepath.Join(c.root, c.TranslationsDir)
	}
	return abs
}

// SourcePath returns the path of the source locale file.
func (c *Config) SourcePath() string {
	return c.LocalePath(c.SourceLang)
}

// LocalePath returns the locale file path for a language.
func (c *Config) LocalePath(lang string) string {
	return filepath.Join(c.AbsTranslationsDir(), lang+".json")
}
