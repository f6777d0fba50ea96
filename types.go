package weblate

import "time"

// Unit state values as reported by the Weblate units API.
const (
	StateNotTranslated = 0
	StateNeedsEditing  = 10
	StateTranslated    = 20
	StateApproved      = 30
	StateReadOnly      = 100
)

// DefaultQuery selects translated-or-better units.
// See https://docs.weblate.org/en/latest/user/search.html for the syntax.
const DefaultQuery = "state:>=translated"

// DefaultTTL is how long a cached locale entry is served without
// contacting the server again.
const DefaultTTL = 30 * time.Minute

// Unit is one translation unit as returned by the Weblate units API. The
// Context field carries the translation key; the first Target entry is the
// resolved text.
type Unit struct {
	ID          int      `json:"id"`
	Context     string   `json:"context"`
	Source      []string `json:"source"`
	Target      []string `json:"target"`
	Translation string   `json:"translation"`
	Location    string   `json:"location"`
	Note        string   `json:"note"`
	Flags       string   `json:"flags"`
	State       int      `json:"state"`
	Fuzzy       bool     `json:"fuzzy"`
	Translated  bool     `json:"translated"`
	Approved    bool     `json:"approved"`
	Position    int      `json:"position"`
	NumWords    int      `json:"num_words"`
	Priority    int      `json:"priority"`
	WebURL      string   `json:"web_url"`
}

// Text returns the first target string, or "" when the unit carries no
// target.
func (u Unit) Text() string {
	if len(u.Target) == 0 {
		return ""
	}
	return u.Target[0]
}

// unitsPage is one page of the units listing. Next carries the absolute
// URL of the following page, or null on the last one.
type unitsPage struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []Unit  `json:"results"`
}

// languageEntry is one entry of the project languages listing. Only
// entries with at least one translated unit enter the locale directory.
type languageEntry struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Total      int    `json:"total"`
	Translated int    `json:"translated"`
}
