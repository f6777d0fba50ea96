package weblate

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/text/language"
)

// Locale identifies a language variant by its subtags. Equality is
// structural, so Locale values can be used directly as map keys.
type Locale struct {
	Language string // primary language subtag, lowercase (e.g. "en")
	Script   string // optional script subtag, title case (e.g. "Latn")
	Region   string // optional region subtag, uppercase (e.g. "GB")
	Variant  string // optional variant subtag, 5-8 alphanumerics/hyphens
	Private  string // optional private-use variant from the @suffix code form, 1-8 characters
}

// localePattern is the grammar for Weblate locale codes. The @xvariant form
// is special: a regular variant must be 5-8 characters long, whereas the
// private-use variant can be shorter.
var localePattern = regexp.MustCompile(
	`^(?i)(?P<lang>[a-z]{2,3})(?:_(?P<script>[a-z]{4}))?(?:_(?P<region>[a-z]{2}))?(?:_(?P<variant>[a-z0-9-]{5,8})|@(?P<xvariant>[a-z0-9-]{1,8}))?$`)

// DeriveLocale parses a Weblate locale code such as "en", "de_AT",
// "sr_Latn_RS" or "en_GB@test" into a Locale. Matching is case-insensitive
// and subtags are normalized to their conventional casing. Codes that do
// not match the grammar yield an *InvalidCodeError.
func DeriveLocale(code string) (Locale, error) {
	match := localePattern.FindStringSubmatch(code)
	if match == nil {
		return Locale{}, &InvalidCodeError{Code: code}
	}

	locale := Locale{}
	for i, name := range localePattern.SubexpNames() {
		value := match[i]
		if value == "" {
			continue
		}
		switch name {
		case "lang":
			locale.Language = strings.ToLower(value)
		case "script":
			locale.Script = titleCase(value)
		case "region":
			locale.Region = strings.ToUpper(value)
		case "variant":
			locale.Variant = strings.ToLower(value)
		case "xvariant":
			locale.Private = strings.ToLower(value)
		}
	}

	return locale, nil
}

// String renders the locale as a BCP 47 style tag. The private-use variant
// is encoded with the x-lvariant extension, matching how short variants
// from the @suffix code form are conventionally carried.
func (l Locale) String() string {
	var sb strings.Builder
	sb.WriteString(l.Language)
	if l.Script != "" {
		sb.WriteString("-")
		sb.WriteString(l.Script)
	}
	if l.Region != "" {
		sb.WriteString("-")
		sb.WriteString(l.Region)
	}
	if l.Variant != "" {
		sb.WriteString("-")
		sb.WriteString(l.Variant)
	}
	if l.Private != "" {
		sb.WriteString("-x-lvariant-")
		sb.WriteString(l.Private)
	}
	return sb.String()
}

// IsZero reports whether the locale has no language subtag.
func (l Locale) IsZero() bool {
	return l.Language == ""
}

// Tag converts the locale to a language.Tag for interoperability with
// packages built on golang.org/x/text. Unknown but well-formed subtags are
// preserved as-is.
func (l Locale) Tag() language.Tag {
	tag, err := language.Parse(l.String())
	if err != nil {
		// ValueError still yields a usable tag with the unknown
		// subtags carried verbatim.
		var verr language.ValueError
		if !errors.As(err, &verr) {
			return language.Und
		}
	}
	return tag
}

// LocaleFromTag converts a language.Tag into a Locale, recognizing the
// x-lvariant private-use encoding produced by Tag. Subtags outside the
// Weblate code grammar are ignored.
func LocaleFromTag(tag language.Tag) Locale {
	parts := strings.Split(tag.String(), "-")
	locale := Locale{Language: strings.ToLower(parts[0])}

	rest := parts[1:]
	for i := 0; i < len(rest); i++ {
		part := rest[i]
		if part == "x" {
			if i+2 < len(rest) && rest[i+1] == "lvariant" {
				locale.Private = strings.ToLower(rest[i+2])
			}
			break
		}
		switch {
		case len(part) == 4 && locale.Script == "":
			locale.Script = titleCase(part)
		case len(part) == 2 && locale.Region == "":
			locale.Region = strings.ToUpper(part)
		case len(part) >= 5 && len(part) <= 8 && locale.Variant == "":
			locale.Variant = strings.ToLower(part)
		}
	}
	return locale
}

// layers returns the locales to fetch, least specific first: bare
// language, then language+region when a region is present, then the full
// locale when a script, variant or private-use variant is present. Later
// layers overwrite earlier ones key by key.
func (l Locale) layers() []Locale {
	layers := []Locale{{Language: l.Language}}
	if l.Region != "" {
		withRegion := Locale{Language: l.Language, Region: l.Region}
		if withRegion != layers[0] {
			layers = append(layers, withRegion)
		}
	}
	if l.Script != "" || l.Variant != "" || l.Private != "" {
		layers = append(layers, l)
	}
	return layers
}

// titleCase uppercases the first letter and lowercases the rest, the
// conventional casing for script subtags.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
