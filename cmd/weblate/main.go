// Command weblate resolves localized texts from a Weblate server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/lmittmann/tint"

	"github.com/openlocale/weblate"
	"github.com/openlocale/weblate/bundled"
	"github.com/openlocale/weblate/cache"
)

// Build-time variables (can be overridden with ldflags)
var (
	version   = weblate.Version
	commit    = weblate.GitCommit
	buildDate = weblate.BuildDate
)

// config is read from the environment; flags override it.
type config struct {
	BaseURL   string `env:"WEBLATE_URL"`
	Project   string `env:"WEBLATE_PROJECT"`
	Component string `env:"WEBLATE_COMPONENT"`
	Token     string `env:"WEBLATE_TOKEN"`
	Query     string `env:"WEBLATE_QUERY"`
	RedisURL  string `env:"WEBLATE_REDIS_URL"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("weblate", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// Flags
	baseURL := fs.String("url", "", "Weblate base URL (default: WEBLATE_URL env)")
	project := fs.String("project", "", "Project slug (default: WEBLATE_PROJECT env)")
	component := fs.String("component", "", "Component slug (default: WEBLATE_COMPONENT env)")
	token := fs.String("token", "", "API token (default: WEBLATE_TOKEN env)")
	query := fs.String("query", "", "Unit query (default: "+weblate.DefaultQuery+")")
	localeCode := fs.String("locale", "", "Locale code (e.g. de_AT, en_GB@test)")
	key := fs.String("key", "", "Message key to resolve")
	all := fs.Bool("all", false, "Dump all texts for the locale")
	languages := fs.Bool("languages", false, "List locales known to the server")
	bundleDir := fs.String("bundle", "", "Directory with fallback message files (TOML/JSON)")
	redisURL := fs.String("redis", "", "Redis URL for a shared cache store (default: WEBLATE_REDIS_URL env)")
	ttl := fs.Duration("ttl", weblate.DefaultTTL, "Cache TTL")
	exportFile := fs.String("export", "", "Export the cache store to a file after resolving")
	importFile := fs.String("import", "", "Seed the cache store from a file before resolving")
	jsonOutput := fs.Bool("json", false, "Output result as JSON")
	verbose := fs.Bool("verbose", false, "Enable debug logging")
	showVersion := fs.Bool("version", false, "Show version")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintf(stdout, "%s %s\n", weblate.Name, version)
		if commit != "unknown" && commit != "" {
			fmt.Fprintf(stdout, "  commit:  %s\n", commit)
		}
		if buildDate != "unknown" && buildDate != "" {
			fmt.Fprintf(stdout, "  built:   %s\n", buildDate)
		}
		return nil
	}

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}
	applyFlag(&cfg.BaseURL, *baseURL)
	applyFlag(&cfg.Project, *project)
	applyFlag(&cfg.Component, *component)
	applyFlag(&cfg.Token, *token)
	applyFlag(&cfg.Query, *query)
	applyFlag(&cfg.RedisURL, *redisURL)

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))

	opts := []weblate.Option{
		weblate.WithLogger(logger),
		weblate.WithTTL(*ttl),
	}
	if cfg.Token != "" {
		opts = append(opts, weblate.WithAuthToken(cfg.Token))
	}
	if cfg.Query != "" {
		opts = append(opts, weblate.WithQuery(cfg.Query))
	}

	var store cache.Store
	if cfg.RedisURL != "" {
		redisStore, err := cache.NewRedisStore(cache.RedisConfig{URL: cfg.RedisURL})
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer redisStore.Close()
		store = redisStore
		opts = append(opts, weblate.WithStore(store))
	} else {
		store = cache.NewMemoryStore()
		opts = append(opts, weblate.WithStore(store))
	}

	if *bundleDir != "" {
		fallback := bundled.New()
		if err := fallback.LoadDir(*bundleDir); err != nil {
			return fmt.Errorf("loading bundle: %w", err)
		}
		opts = append(opts, weblate.WithFallback(fallback))
	}

	src, err := weblate.New(cfg.BaseURL, cfg.Project, cfg.Component, opts...)
	if err != nil {
		return err
	}
	defer src.Close()

	if *importFile != "" {
		result, err := cache.NewImporter(store).ImportFromFile(*importFile)
		if err != nil {
			return fmt.Errorf("importing cache: %w", err)
		}
		logger.Debug("imported cache entries", "imported", result.Imported, "failed", result.Failed)
	}

	ctx := context.Background()

	switch {
	case *languages:
		if err := printLanguages(ctx, src, stdout, *jsonOutput); err != nil {
			return err
		}
	case *localeCode != "":
		locale, err := weblate.DeriveLocale(*localeCode)
		if err != nil {
			return err
		}
		switch {
		case *all:
			if err := printAll(ctx, src, locale, stdout, *jsonOutput); err != nil {
				return err
			}
		case *key != "":
			text, ok := src.Resolve(ctx, *key, locale)
			if !ok {
				return fmt.Errorf("no translation for key %q in locale %s", *key, locale)
			}
			fmt.Fprintln(stdout, text)
		default:
			fs.Usage()
			return fmt.Errorf("-key or -all is required with -locale")
		}
	default:
		fs.Usage()
		return fmt.Errorf("-locale or -languages is required")
	}

	if *exportFile != "" {
		meta := map[string]string{"project": cfg.Project, "component": cfg.Component}
		if err := cache.NewExporter(store).ExportToFile(*exportFile, meta); err != nil {
			return fmt.Errorf("exporting cache: %w", err)
		}
	}

	return nil
}

func printLanguages(ctx context.Context, src *weblate.Source, stdout io.Writer, asJSON bool) error {
	src.ReloadDirectory(ctx)

	locales := src.Locales()
	codes := make([]string, 0, len(locales))
	for _, locale := range locales {
		codes = append(codes, locale.String())
	}
	sort.Strings(codes)

	if asJSON {
		return json.NewEncoder(stdout).Encode(codes)
	}
	for _, code := range codes {
		fmt.Fprintln(stdout, code)
	}
	return nil
}

func printAll(ctx context.Context, src *weblate.Source, locale weblate.Locale, stdout io.Writer, asJSON bool) error {
	all := src.ResolveAll(ctx, locale)

	if asJSON {
		encoder := json.NewEncoder(stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(all)
	}

	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(stdout, "%s=%s\n", k, all[k])
	}
	return nil
}

func applyFlag(target *string, value string) {
	if value != "" {
		*target = value
	}
}
