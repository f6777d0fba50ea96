package weblate

// AllPropertiesSource supplies texts for a locale from a secondary source,
// typically message files bundled with the application. ResolveAll
// consults it for keys the server does not know.
type AllPropertiesSource interface {
	// AllProperties returns all texts known for the locale. Implementations
	// return an empty map, never nil, when nothing is known.
	AllProperties(locale Locale) map[string]string
}
