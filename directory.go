package weblate

import (
	"context"
	"log/slog"
	"sync"
)

// directory maintains the mapping from Locale to Weblate locale code,
// derived from the project languages listing. The snapshot is replaced as
// a whole: concurrent readers see either the old or the new complete
// mapping, never a partial one.
type directory struct {
	client *apiClient
	manual map[string]Locale // manual code registrations, immutable after setup
	logger *slog.Logger

	loadMu sync.Mutex // serializes remote loads

	mu     sync.RWMutex
	codes  map[Locale]string
	loaded bool
}

func newDirectory(client *apiClient, manual map[string]Locale, logger *slog.Logger) *directory {
	return &directory{
		client: client,
		manual: manual,
		logger: logger,
	}
}

// get returns the Weblate code for the locale. The listing is loaded
// lazily exactly once; after that a plain lookup never triggers a remote
// call, even when the initial load failed.
func (d *directory) get(ctx context.Context, locale Locale) (string, bool) {
	d.mu.RLock()
	if d.loaded {
		code, ok := d.codes[locale]
		d.mu.RUnlock()
		return code, ok
	}
	d.mu.RUnlock()

	d.load(ctx, false)

	d.mu.RLock()
	defer d.mu.RUnlock()
	code, ok := d.codes[locale]
	return code, ok
}

// load rebuilds the snapshot from the languages listing. Entries without
// translated units are skipped, codes that fail to decode are dropped with
// a warning. On listing failure the snapshot degrades to empty on first
// load and stays unchanged on later explicit reloads.
func (d *directory) load(ctx context.Context, force bool) {
	d.loadMu.Lock()
	defer d.loadMu.Unlock()

	d.mu.RLock()
	loaded := d.loaded
	d.mu.RUnlock()
	if loaded && !force {
		return
	}

	languages, err := d.client.fetchLanguages(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()

	if err != nil {
		d.logger.Warn("could not load languages", "error", err)
		if !d.loaded {
			d.codes = map[Locale]string{}
			d.loaded = true
		}
		return
	}

	codes := make(map[Locale]string, len(languages))
	for _, lang := range languages {
		if lang.Translated <= 0 {
			continue
		}
		locale, ok := d.derive(lang.Code, codes)
		if !ok {
			continue
		}
		codes[locale] = lang.Code
	}

	d.codes = codes
	d.loaded = true
}

// derive maps a code to a Locale, consulting manual registrations first
// and rejecting codes whose derived locale is already bound elsewhere.
func (d *directory) derive(code string, pending map[Locale]string) (Locale, bool) {
	if locale, ok := d.manual[code]; ok {
		return locale, true
	}

	locale, err := DeriveLocale(code)
	if err != nil {
		d.logger.Warn("could not derive a locale, consider registering it manually",
			"code", code, "error", err)
		return Locale{}, false
	}

	if existing, ok := d.findCode(locale, pending); ok && existing != code {
		d.logger.Warn("dropping colliding locale code",
			"error", &CollisionError{Code: code, Existing: existing, Locale: locale})
		return Locale{}, false
	}

	d.logger.Debug("derived locale from code", "code", code, "locale", locale)
	return locale, true
}

// findCode reverse-scans the manual registrations and the codes collected
// so far for an existing binding of the locale.
func (d *directory) findCode(locale Locale, pending map[Locale]string) (string, bool) {
	for code, registered := range d.manual {
		if registered == locale {
			return code, true
		}
	}
	if code, ok := pending[locale]; ok {
		return code, true
	}
	return "", false
}

// snapshot returns a copy of the current mapping without triggering a
// load.
func (d *directory) snapshot() map[Locale]string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[Locale]string, len(d.codes))
	for locale, code := range d.codes {
		out[locale] = code
	}
	return out
}

// clear drops the snapshot; the next lookup loads it again.
func (d *directory) clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.codes = nil
	d.loaded = false
}
