package weblate

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/openlocale/weblate/cache"
)

// Source resolves message keys against a Weblate translation server. It
// caches translations per locale, layers region- and variant-specific
// texts over the base language, and refreshes stale entries with delta
// queries.
type Source struct {
	client    *apiClient
	directory *directory
	store     cache.Store
	fallback  AllPropertiesSource
	logger    *slog.Logger

	query            string
	ttl              time.Duration
	initialTimestamp int64
	async            bool

	httpClient HTTPDoer
	manual     map[string]Locale

	runner    taskRunner
	refreshMu sync.Mutex // serializes refresh merges

	now func() time.Time
}

// Option is a functional option for configuring a Source.
type Option func(*Source)

// WithHTTPClient sets the HTTP client used for all remote calls.
func WithHTTPClient(client HTTPDoer) Option {
	return func(s *Source) {
		s.httpClient = client
	}
}

// WithAuthToken installs the Weblate authentication decorator, which adds
// an "Authorization: Token ..." header and forces "Accept:
// application/json" on every request. Be aware: this replaces the whole
// previously configured HTTP client, including any transport it carried.
func WithAuthToken(token string) Option {
	return func(s *Source) {
		s.httpClient = &http.Client{Transport: &tokenTransport{token: token}}
	}
}

// WithQuery sets the Weblate query for selecting units. Default is
// DefaultQuery.
func WithQuery(query string) Option {
	return func(s *Source) {
		s.query = query
	}
}

// WithTTL sets how long a cached locale entry is served without a remote
// call. Zero or negative means entries only refresh on explicit Reload.
func WithTTL(ttl time.Duration) Option {
	return func(s *Source) {
		s.ttl = ttl
	}
}

// WithInitialTimestamp seeds the "since" filter of the first fetch per
// locale. Useful when a pre-warmed store is known to contain everything up
// to that point in time.
func WithInitialTimestamp(t time.Time) Option {
	return func(s *Source) {
		s.initialTimestamp = t.UnixMilli()
	}
}

// WithAsync dispatches remote calls to a single background worker.
// Lookups immediately return whatever is currently cached, possibly empty,
// and the cache is updated in place once the background fetch completes.
func WithAsync() Option {
	return func(s *Source) {
		s.async = true
	}
}

// WithLocaleMapping registers a manual mapping of a Weblate code to a
// Locale, taking precedence over grammar-based derivation.
func WithLocaleMapping(code string, locale Locale) Option {
	return func(s *Source) {
		s.manual[code] = locale
	}
}

// WithStore sets the cache store. Default is an in-memory store.
func WithStore(store cache.Store) Option {
	return func(s *Source) {
		s.store = store
	}
}

// WithFallback sets the secondary message source consulted by ResolveAll
// for keys the server does not know.
func WithFallback(fallback AllPropertiesSource) Option {
	return func(s *Source) {
		s.fallback = fallback
	}
}

// WithLogger sets the logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		s.logger = logger
	}
}

// New creates a Source for the given Weblate instance, project slug and
// component slug.
func New(baseURL, project, component string, opts ...Option) (*Source, error) {
	if baseURL == "" {
		return nil, &ConfigError{Field: "baseURL"}
	}
	if project == "" {
		return nil, &ConfigError{Field: "project"}
	}
	if component == "" {
		return nil, &ConfigError{Field: "component"}
	}

	s := &Source{
		logger:     slog.Default(),
		query:      DefaultQuery,
		ttl:        DefaultTTL,
		httpClient: http.DefaultClient,
		manual:     make(map[string]Locale),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = cache.NewMemoryStore()
	}

	s.client = &apiClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		project:   project,
		component: component,
		http:      s.httpClient,
		logger:    s.logger,
	}
	s.directory = newDirectory(s.client, s.manual, s.logger)

	if s.async {
		s.runner = newAsyncRunner(64)
	} else {
		s.runner = syncRunner{}
	}

	return s, nil
}

// Close stops the background worker, if any.
func (s *Source) Close() error {
	s.runner.close()
	return nil
}

// Resolve returns the text for key in the given locale. ok is false when
// neither the cache nor the server knows the key. Remote calls only happen
// on a cache miss or once the entry's TTL elapsed; any remote failure
// degrades to "not found" while previously cached texts stay served.
func (s *Source) Resolve(ctx context.Context, key string, locale Locale) (string, bool) {
	translations := s.translations(ctx, locale, false)
	text, ok := translations[key]
	return text, ok
}

// ResolveAll returns all known texts for the locale, merged with the
// fallback source if one is configured. Server-side texts win on duplicate
// keys.
func (s *Source) ResolveAll(ctx context.Context, locale Locale) map[string]string {
	all := make(map[string]string)
	for k, v := range s.translations(ctx, locale, false) {
		all[k] = v
	}

	if s.fallback != nil {
		for k, v := range s.fallback.AllProperties(locale) {
			if _, ok := all[k]; !ok {
				all[k] = v
			}
		}
	}

	return all
}

// Reload forces a delta refresh for the given locales regardless of TTL.
func (s *Source) Reload(ctx context.Context, locales ...Locale) {
	s.logger.Info("going to reload translations", "locales", len(locales))
	for _, locale := range locales {
		locale := locale
		s.runner.submit(ctx, func(ctx context.Context) {
			s.refresh(ctx, locale, true)
		})
	}
}

// ReloadDirectory rebuilds the locale directory from the server without
// touching cached translations.
func (s *Source) ReloadDirectory(ctx context.Context) {
	s.runner.submit(ctx, func(ctx context.Context) {
		s.directory.load(ctx, true)
	})
}

// ClearCache drops all cached translations and the locale directory. The
// next resolution loads both from scratch.
func (s *Source) ClearCache() {
	s.logger.Info("going to clear cache")
	s.directory.clear()
	if err := s.store.Clear(); err != nil {
		s.logger.Warn("could not clear cache store", "error", err)
	}
}

// RemoveEmptyCacheEntries drops cached locales whose mapping is empty.
// Useful after a directory reload surfaces a locale that previously had no
// Weblate code.
func (s *Source) RemoveEmptyCacheEntries() {
	for _, key := range s.store.Keys() {
		entry, ok := s.store.Get(key)
		if !ok || len(entry.Translations) > 0 {
			continue
		}
		if err := s.store.Delete(key); err != nil {
			s.logger.Warn("could not remove empty cache entry", "locale", key, "error", err)
		}
	}
}

// Locales returns the locales currently known to the directory, without
// triggering a load.
func (s *Source) Locales() []Locale {
	snapshot := s.directory.snapshot()
	locales := make([]Locale, 0, len(snapshot))
	for locale := range snapshot {
		locales = append(locales, locale)
	}
	return locales
}

// Query returns the configured unit query.
func (s *Source) Query() string {
	return s.query
}

// TTL returns the configured cache TTL.
func (s *Source) TTL() time.Duration {
	return s.ttl
}

// translations returns the current mapping for the locale, scheduling a
// refresh when the entry is absent, stale or forced. In synchronous mode
// the refresh completes before returning; in asynchronous mode the
// last-committed state is returned immediately.
func (s *Source) translations(ctx context.Context, locale Locale, force bool) map[string]string {
	key := locale.String()

	if entry, ok := s.store.Get(key); ok && !force && !s.expired(entry) {
		return entry.Translations
	}

	s.runner.submit(ctx, func(ctx context.Context) {
		s.refresh(ctx, locale, force)
	})

	entry, _ := s.store.Get(key)
	return entry.Translations
}

func (s *Source) expired(entry cache.Entry) bool {
	if s.ttl <= 0 {
		return false
	}
	return s.now().Sub(time.UnixMilli(entry.Timestamp)) > s.ttl
}

// refresh fetches and merges translations for the locale, committing the
// new entry only when every layer fetch succeeded. The merged entry is
// swapped in as one unit, so readers observe either the pre-refresh or the
// fully merged state.
func (s *Source) refresh(ctx context.Context, locale Locale, force bool) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	key := locale.String()
	entry, ok := s.store.Get(key)
	if ok && !force && !s.expired(entry) {
		// a competing caller refreshed the entry meanwhile
		return
	}

	since := s.initialTimestamp
	if ok {
		since = entry.Timestamp
	}
	now := s.now().UnixMilli()

	merged := make(map[string]string, len(entry.Translations))
	for k, v := range entry.Translations {
		merged[k] = v
	}

	for _, layer := range locale.layers() {
		code, found := s.directory.get(ctx, layer)
		if !found {
			s.logger.Debug("no weblate code registered for locale", "locale", layer)
			continue
		}

		units, err := s.client.fetchUnits(ctx, code, s.query, since)
		if err != nil {
			s.logger.Warn("could not load translations, keeping cached state",
				"locale", locale, "code", code, "error", err)
			return
		}

		for _, unit := range units {
			if unit.Context == "" {
				continue
			}
			merged[unit.Context] = unit.Text()
		}
	}

	// The timestamp advances even when the delta returned no rows:
	// "no changes" confirms freshness.
	if err := s.store.Set(key, cache.Entry{Translations: merged, Timestamp: now}); err != nil {
		s.logger.Warn("could not store cache entry", "locale", locale, "error", err)
	}
}
