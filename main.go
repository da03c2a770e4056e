// rire — AI translation manager for JSON locale files.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jannikbertram/Rire/config"
	"github.com/jannikbertram/Rire/i18n"
	"github.com/jannikbertram/Rire/langname"
	"github.com/jannikbertram/Rire/lockfile"
	"github.com/jannikbertram/Rire/merge"
	"github.com/jannikbertram/Rire/messages"
	"github.com/jannikbertram/Rire/provider"
	"github.com/jannikbertram/Rire/settings"
	"github.com/jannikbertram/Rire/translate"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flag
// ---------------------------------------------------------------------------

var rootDir string

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rire",
		Short: "AI translation manager for JSON locale files",
		Long: `rire — AI translation manager for JSON locale files.

Reads the source locale file declared in .rire.yaml, keeps target locale
files in sync with the source key set, and translates new or changed
messages in batches using an AI provider. A rire.lock file tracks source
checksums so unchanged messages are never retranslated.

Commands:
  status      Show project info and translation statistics
  translate   Translate locale files using AI
  models      List available models for the configured provider
  auth        Manage provider API keys

AI Providers:
  openai         OpenAI — API key
  anthropic      Anthropic — API key
  google         Google AI (Gemini) — API key
  groq           Groq — API key
  ollama         Ollama local server (no key)
  custom-openai  Custom OpenAI-compatible endpoint`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flag — inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory")

	root.AddCommand(
		newStatusCmd(),
		newTranslateCmd(),
		newModelsCmd(),
		newAuthCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("rire version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// status
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show project info and translation statistics",
		Long: `Show the project configuration and per-language translation progress.
Does not modify any files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus()
		},
	}
}

func runStatus() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n%sProject%s\n", colorBlue, colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	fmt.Fprintf(os.Stderr, "  Source:     %s (%s)\n", cfg.SourceLang, langname.Resolve(cfg.SourceLang))
	fmt.Fprintf(os.Stderr, "  Locales:    %s\n", cfg.AbsTranslationsDir())
	fmt.Fprintf(os.Stderr, "  Provider:   %s\n", cfg.Provider)
	if cfg.Model != "" {
		fmt.Fprintf(os.Stderr, "  Model:      %s\n", cfg.Model)
	}
	fmt.Fprintln(os.Stderr)

	source, err := messages.ParseFile(cfg.SourcePath())
	if err != nil {
		logWarning("Cannot read source locale: %v", err)
		return nil
	}
	fmt.Fprintf(os.Stderr, "  %-8s %-28s %s\n", "Lang", "Language", "Translated")
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	for _, lang := range cfg.Languages {
		target, err := messages.ParseFile(cfg.LocalePath(lang))
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %-8s %-28s missing\n", lang, langname.Resolve(lang))
			continue
		}
		merged, _ := merge.Merge(target, source)
		total, translated, _ := merged.Stats()
		pct := 0
		if total > 0 {
			pct = translated * 100 / total
		}
		fmt.Fprintf(os.Stderr, "  %-8s %-28s %d/%d (%d%%)\n", lang, langname.Resolve(lang), translated, total, pct)
	}
	fmt.Fprintln(os.Stderr)
	return nil
}

// ---------------------------------------------------------------------------
// translate
// ---------------------------------------------------------------------------

func newTranslateCmd() *cobra.Command {
	var (
		langs       []string
		providerID  string
		model       string
		apiKey      string
		baseURL     string
		proxy       string
		contextText string
		batchSize   int
		timeout     time.Duration
		retranslate bool
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate locale files using AI",
		Long: `Translate target locale files from the source locale using an AI provider.

Target files are first synchronized with the source key set (new keys
added, stale keys dropped), then only new or changed messages are sent
for translation, in batches. Languages are processed one at a time; a
failing language is reported and the remaining languages continue.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if providerID != "" {
				cfg.Provider = providerID
			}
			if model != "" {
				cfg.Model = model
			}
			if baseURL != "" {
				cfg.BaseURL = baseURL
			}
			if contextText != "" {
				cfg.Context = contextText
			}
			if batchSize > 0 {
				cfg.BatchSize = batchSize
			}
			if len(langs) == 0 {
				langs = cfg.Languages
			}

			prov, err := resolveProvider(cfg, apiKey, proxy, timeout)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			return runTranslate(ctx, cfg, prov, langs, retranslate, verbose)
		},
	}

	cmd.Flags().StringSliceVarP(&langs, "lang", "l", nil, "Target language(s) (default: all from .rire.yaml)")
	cmd.Flags().StringVarP(&providerID, "provider", "p", "", "AI provider (overrides .rire.yaml)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Model identifier (overrides .rire.yaml)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key (overrides RIRE_API_KEY and the credential store)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "API base URL (custom-openai, ollama)")
	cmd.Flags().StringVar(&proxy, "proxy", "", "HTTP/HTTPS proxy URL")
	cmd.Flags().StringVar(&contextText, "context", "", "Product context for the translation prompt")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Messages per API call (default 100)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Per-request timeout")
	cmd.Flags().BoolVar(&retranslate, "force", false, "Retranslate all messages, ignoring the lock file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	return cmd
}

func runTranslate(ctx context.Context, cfg *config.Config, prov provider.Provider, langs []string, retranslate, verbose bool) error {
	source, err := messages.ParseFile(cfg.SourcePath())
	if err != nil {
		return fmt.Errorf("source locale: %w", err)
	}
	if source.Len() == 0 {
		logInfo("%s", i18n.T("No messages need translation"))
		return nil
	}

	// Verify the key before burning tokens on a doomed run.
	if prov.APIKey != "" {
		if err := prov.Verify(ctx); err != nil {
			return err
		}
	}

	lock, err := lockfile.Load(cfg.Root())
	if err != nil {
		return err
	}

	var failed []string
	for _, lang := range langs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := translateLanguage(ctx, cfg, prov, source, lock, lang, retranslate, verbose); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logError("Translating %s: %v", lang, err)
			failed = append(failed, lang)
			continue
		}
	}

	if len(failed) > 0 {
		msg := fmt.Sprintf(i18n.N("%d language failed", "%d languages failed", len(failed)), len(failed))
		return fmt.Errorf("%s: %s", msg, strings.Join(failed, ", "))
	}
	logSuccess("%s", i18n.T("Translation complete"))
	return nil
}

// translateLanguage syncs one target locale with the source and translates
// its pending messages.
func translateLanguage(ctx context.Context, cfg *config.Config, prov provider.Provider, source *messages.Map, lock *lockfile.LockFile, lang string, retranslate, verbose bool) error {
	target, err := messages.ParseFile(cfg.LocalePath(lang))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logWarning("Recreating %s: %v", cfg.LocalePath(lang), err)
		}
		target = messages.New()
	}

	merged, res := merge.Merge(target, source)
	if res.Added > 0 || res.Removed > 0 {
		logInfo("%s: %d key(s) added, %d removed", lang, res.Added, res.Removed)
	}

	pending := pendingMessages(source, merged, lock, lang, retranslate)
	if pending.Len() == 0 {
		logInfo("%s (%s): up to date", lang, langname.Resolve(lang))
		lock.Prune(lang, source)
		if err := merged.WriteFile(cfg.LocalePath(lang)); err != nil {
			return err
		}
		return lock.Save()
	}

	logInfo("Translating %s (%s) — %d message(s)...", lang, langname.Resolve(lang), pending.Len())

	result, err := translate.TranslateMessages(ctx, translate.Options{
		Messages:   pending,
		TargetLang: lang,
		Context:    cfg.Context,
		Invoker:    prov,
		BatchSize:  cfg.BatchSize,
		OnProgress: func(done, total int) {
			logInfo("  %s: %d/%d", lang, done, total)
		},
		OnLog:   logInfo,
		Verbose: verbose,
	})
	if err != nil {
		return err
	}

	for _, e := range result.Entries() {
		merged.Set(e.Key, e.Value)
	}
	if err := merged.WriteFile(cfg.LocalePath(lang)); err != nil {
		return err
	}

	lock.Record(lang, pending.Entries())
	lock.Prune(lang, source)
	return lock.Save()
}

// pendingMessages selects the source messages a language still needs:
// everything when retranslating, otherwise keys whose target value is empty
// or whose source text changed since the last recorded translation.
func pendingMessages(source, merged *messages.Map, lock *lockfile.LockFile, lang string, retranslate bool) *messages.Map {
	if retranslate {
		return messages.FromEntries(source.Entries())
	}

	stale := make(map[string]bool)
	for _, key := range lock.Stale(lang, source) {
		stale[key] = true
	}

	pending := messages.New()
	for _, e := range source.Entries() {
		current, _ := merged.Get(e.Key)
		if current == "" || stale[e.Key] {
			pending.Set(e.Key, e.Value)
		}
	}
	return pending
}

// ---------------------------------------------------------------------------
// models
// ---------------------------------------------------------------------------

func newModelsCmd() *cobra.Command {
	var (
		providerID string
		apiKey     string
		baseURL    string
		proxy      string
	)

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List available models for the configured provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if providerID != "" {
				cfg.Provider = providerID
			}
			if baseURL != "" {
				cfg.BaseURL = baseURL
			}

			prov, err := resolveProvider(cfg, apiKey, proxy, 0)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			models, err := prov.ListModels(ctx)
			if err != nil {
				return err
			}
			for _, m := range models {
				if m.Name != m.ID {
					fmt.Printf("%-40s %s\n", m.ID, m.Name)
				} else {
					fmt.Println(m.ID)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&providerID, "provider", "p", "", "AI provider (overrides .rire.yaml)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "API base URL")
	cmd.Flags().StringVar(&proxy, "proxy", "", "HTTP/HTTPS proxy URL")

	return cmd
}

// ---------------------------------------------------------------------------
// auth
// ---------------------------------------------------------------------------

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage provider API keys",
		Long: `Store, inspect, and remove API keys for AI providers.

Keys are stored in ` + settings.FilePath() + ` with 0600 permissions.`,
	}

	cmd.AddCommand(newAuthLoginCmd(), newAuthLogoutCmd(), newAuthStatusCmd())
	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var (
		providerID string
		apiKey     string
		baseURL    string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an API key for a provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := provider.Default(providerID); !ok {
				return fmt.Errorf("unknown provider %q", providerID)
			}
			if apiKey == "" {
				return fmt.Errorf("--api-key is required")
			}

			var err error
			if baseURL != "" {
				err = settings.SetAPIKeyWithBaseURL(providerID, apiKey, baseURL)
			} else {
				err = settings.SetAPIKey(providerID, apiKey)
			}
			if err != nil {
				return err
			}
			logSuccess("Stored API key for %s (%s)", providerID, settings.MaskKey(apiKey))
			return nil
		},
	}

	cmd.Flags().StringVarP(&providerID, "provider", "p", "openai", "AI provider")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key to store")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "API base URL (custom-openai)")

	return cmd
}

func newAuthLogoutCmd() *cobra.Command {
	var providerID string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials for a provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := settings.Remove(providerID); err != nil {
				return err
			}
			logSuccess("Removed credentials for %s", providerID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&providerID, "provider", "p", "openai", "AI provider")
	return cmd
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show stored credentials",
		Run: func(cmd *cobra.Command, args []string) {
			store := settings.Load()
			if len(store) == 0 {
				logInfo("No stored credentials (%s)", settings.FilePath())
				return
			}
			for id := range provider.DefaultProviders() {
				info, ok := store[id]
				if !ok {
					continue
				}
				line := fmt.Sprintf("  %-14s %s", id, settings.MaskKey(info.Key))
				if info.BaseURL != "" {
					line += "  " + info.BaseURL
				}
				fmt.Fprintln(os.Stderr, line)
			}
		},
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(rootDir)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("no %s found in %s", config.FileName, rootDir)
	}
	return cfg, nil
}

// resolveProvider builds the provider configuration from defaults, the
// config file, the credential store, and flags.
func resolveProvider(cfg *config.Config, apiKeyFlag, proxy string, timeout time.Duration) (provider.Provider, error) {
	prov, ok := provider.Default(cfg.Provider)
	if !ok {
		return provider.Provider{}, fmt.Errorf("unknown provider %q", cfg.Provider)
	}

	if cfg.Model != "" {
		prov.Model = cfg.Model
	}
	if cfg.BaseURL != "" {
		prov.BaseURL = cfg.BaseURL
	} else if stored := settings.GetBaseURL(prov.ID); stored != "" {
		prov.BaseURL = stored
	}
	if prov.BaseURL == "" {
		return provider.Provider{}, fmt.Errorf("provider %q needs a base URL (set base_url in %s or use --base-url)", prov.ID, config.FileName)
	}
	if prov.Model == "" {
		return provider.Provider{}, fmt.Errorf("provider %q needs a model (set model in %s or use --model)", prov.ID, config.FileName)
	}

	prov.APIKey = settings.ResolveAPIKey(apiKeyFlag, prov.ID)
	if proxy != "" {
		prov.Proxy = proxy
	}
	if timeout > 0 {
		prov.Timeout = timeout
	}
	return prov, nil
}
