// Package cache provides per-locale translation entry stores.
package cache

// Entry is the cached translation state for one locale: the accumulated
// key-to-text mapping plus the epoch-millisecond timestamp of the last
// refresh. Entries are treated as immutable snapshots; a refresh stores a
// new Entry instead of mutating the maps in place.
type Entry struct {
	Translations map[string]string `json:"translations"`
	Timestamp    int64             `json:"timestamp"`
}

// Clone returns a deep copy of the entry.
func (e Entry) Clone() Entry {
	translations := make(map[string]string, len(e.Translations))
	for k, v := range e.Translations {
		translations[k] = v
	}
	return Entry{Translations: translations, Timestamp: e.Timestamp}
}

// Store is the interface for per-locale translation storage. Keys are
// canonical locale strings.
type Store interface {
	// Get retrieves the entry for a locale key. ok is false when absent.
	Get(key string) (Entry, bool)

	// Set stores the entry for a locale key.
	Set(key string, entry Entry) error

	// Delete removes the entry for a locale key.
	Delete(key string) error

	// Keys returns all stored locale keys.
	Keys() []string

	// Clear removes all entries.
	Clear() error
}
