package weblate

import "fmt"

// InvalidCodeError indicates a remote locale code that does not match the
// Weblate code grammar. Non-fatal: the caller logs a warning and drops the
// code.
type InvalidCodeError struct {
	Code string
}

func (e *InvalidCodeError) Error() string {
	return fmt.Sprintf("locale code %q does not match the Weblate code grammar", e.Code)
}

// CollisionError indicates that a remote locale code derives a Locale that
// is already bound to a different code. The first registration wins and
// the new code is dropped.
type CollisionError struct {
	Code     string // the rejected code
	Existing string // the code the locale is already bound to
	Locale   Locale
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("code %q derives locale %q which is already registered for code %q",
		e.Code, e.Locale, e.Existing)
}

// FetchError indicates a failed remote call: a transport error, a non-2xx
// status or an undecodable response body.
type FetchError struct {
	URL    string
	Status int // zero when the request never produced a response
	Body   string
	Cause  error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("fetch failed: %s", e.URL)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status=%d)", e.Status)
	}
	if e.Body != "" {
		msg += fmt.Sprintf(" (body=%s)", e.Body)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// ConfigError indicates a missing required configuration field. Fatal:
// surfaced immediately at construction.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", e.Field)
}
