// Package bundled serves fallback messages from go-i18n message files
// shipped with the application, typically consulted when the translation
// server has no entry for a key.
package bundled

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/openlocale/weblate"
)

// unmarshalFuncs maps message file extensions to their parsers.
var unmarshalFuncs = map[string]i18n.UnmarshalFunc{
	"toml": toml.Unmarshal,
	"json": json.Unmarshal,
}

// Source holds messages parsed from go-i18n message files (TOML or JSON).
// The file name carries the language tag, e.g. "active.en-GB.toml".
type Source struct {
	mu       sync.RWMutex
	messages map[string]map[string]string // canonical tag -> key -> text
}

// New creates an empty bundled source.
func New() *Source {
	return &Source{
		messages: make(map[string]map[string]string),
	}
}

// LoadBytes parses a message file from memory. The path is only used to
// infer the format and language tag.
func (s *Source) LoadBytes(buf []byte, path string) error {
	file, err := i18n.ParseMessageFileBytes(buf, path, unmarshalFuncs)
	if err != nil {
		return fmt.Errorf("parsing message file %s: %w", path, err)
	}

	tag := file.Tag.String()

	s.mu.Lock()
	defer s.mu.Unlock()

	texts := s.messages[tag]
	if texts == nil {
		texts = make(map[string]string)
		s.messages[tag] = texts
	}
	for _, message := range file.Messages {
		text := message.Other
		if text == "" {
			text = message.One
		}
		if text == "" {
			continue
		}
		texts[message.ID] = text
	}
	return nil
}

// LoadFile parses a message file from disk.
func (s *Source) LoadFile(path string) error {
	buf, err := os.ReadFile(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return fmt.Errorf("reading message file: %w", err)
	}
	return s.LoadBytes(buf, path)
}

// LoadDir parses all message files in a directory (non-recursive).
func (s *Source) LoadDir(dir string) error {
	return s.LoadFS(os.DirFS(dir), ".")
}

// LoadFS parses all message files below root in fsys, which makes embedded
// message files usable via embed.FS.
func (s *Source) LoadFS(fsys fs.FS, root string) error {
	return fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.TrimPrefix(filepath.Ext(path), ".")
		if _, ok := unmarshalFuncs[ext]; !ok {
			return nil
		}
		buf, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("reading message file %s: %w", path, err)
		}
		return s.LoadBytes(buf, path)
	})
}

// AllProperties returns all texts known for the locale. Like the remote
// source, texts are layered least specific first: bare language, then
// language+region, then the full locale, later layers overwriting earlier
// ones.
func (s *Source) AllProperties(locale weblate.Locale) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make(map[string]string)
	for _, candidate := range candidates(locale) {
		for key, text := range s.messages[candidate] {
			all[key] = text
		}
	}
	return all
}

// candidates lists the tags to consult, least specific first.
func candidates(locale weblate.Locale) []string {
	tags := []string{tagOf(weblate.Locale{Language: locale.Language})}
	if locale.Region != "" {
		tags = append(tags, tagOf(weblate.Locale{Language: locale.Language, Region: locale.Region}))
	}
	full := tagOf(locale)
	if full != tags[len(tags)-1] {
		tags = append(tags, full)
	}
	return tags
}

func tagOf(locale weblate.Locale) string {
	return locale.Tag().String()
}

// Verify Source implements the fallback interface
var _ weblate.AllPropertiesSource = (*Source)(nil)
