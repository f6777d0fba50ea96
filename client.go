package weblate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// HTTPDoer executes a single HTTP request. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// tokenTransport adds Weblate authentication information to every request.
type tokenTransport struct {
	token string
	base  http.RoundTripper
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Token "+t.token)
	clone.Header.Set("Accept", "application/json")

	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}

// deltaTimeFormat is the minute-precision UTC timestamp format understood
// by Weblate's added/changed search filters.
const deltaTimeFormat = "2006-01-02T15:04Z"

// deltaQuery augments the query with an added-or-changed-since clause when
// since (epoch millis) is positive.
func deltaQuery(query string, since int64) string {
	if since <= 0 {
		return query
	}
	ts := time.UnixMilli(since).UTC().Format(deltaTimeFormat)
	return fmt.Sprintf("%s AND (added:>=%s OR changed:>=%s)", query, ts, ts)
}

// apiClient issues the two Weblate REST calls the source needs: the
// project languages listing and the paginated units listing.
type apiClient struct {
	baseURL   string
	project   string
	component string
	http      HTTPDoer
	logger    *slog.Logger
}

// fetchUnits retrieves the complete set of units for one Weblate locale
// code, following "next" page links verbatim until exhausted. Any failed
// page aborts the whole fetch; nothing from this call is committed
// anywhere, so previously cached state stays intact.
func (c *apiClient) fetchUnits(ctx context.Context, code, query string, since int64) ([]Unit, error) {
	next := fmt.Sprintf("%s/api/translations/%s/%s/%s/units/?q=%s",
		c.baseURL, c.project, c.component, code, url.QueryEscape(deltaQuery(query, since)))

	var units []Unit
	for next != "" {
		var page unitsPage
		if err := c.getJSON(ctx, next, &page); err != nil {
			return nil, err
		}
		units = append(units, page.Results...)

		next = ""
		if page.Next != nil {
			next = *page.Next
		}
	}
	return units, nil
}

// fetchLanguages retrieves the project languages listing.
func (c *apiClient) fetchLanguages(ctx context.Context) ([]languageEntry, error) {
	listURL := fmt.Sprintf("%s/api/projects/%s/languages/", c.baseURL, c.project)

	var languages []languageEntry
	if err := c.getJSON(ctx, listURL, &languages); err != nil {
		return nil, err
	}
	return languages, nil
}

func (c *apiClient) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &FetchError{URL: rawURL, Cause: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent())

	resp, err := c.http.Do(req)
	if err != nil {
		return &FetchError{URL: rawURL, Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &FetchError{URL: rawURL, Status: resp.StatusCode, Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &FetchError{URL: rawURL, Status: resp.StatusCode, Body: truncateBody(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &FetchError{URL: rawURL, Status: resp.StatusCode, Body: truncateBody(body), Cause: err}
	}
	return nil
}

// truncateBody keeps error messages readable when the server returns a
// large HTML error page.
func truncateBody(body []byte) string {
	const max = 256
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
