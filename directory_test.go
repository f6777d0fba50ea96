package weblate

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestDirectory(t *testing.T, manual map[string]Locale, handler http.HandlerFunc) (*directory, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := &apiClient{
		baseURL:   server.URL,
		project:   "test-project",
		component: "test-comp",
		http:      server.Client(),
		logger:    discardLogger(),
	}
	return newDirectory(client, manual, discardLogger()), server
}

func TestDirectory_Load(t *testing.T) {
	dir, _ := newTestDirectory(t, nil, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"code":"en","translated":12},
			{"code":"de_AT","translated":3},
			{"code":"fr","translated":0},
			{"code":"not a code!","translated":5}
		]`)
	})

	code, ok := dir.get(context.Background(), Locale{Language: "en"})
	if !ok || code != "en" {
		t.Errorf("get(en) = %q, %v; want en, true", code, ok)
	}

	code, ok = dir.get(context.Background(), Locale{Language: "de", Region: "AT"})
	if !ok || code != "de_AT" {
		t.Errorf("get(de-AT) = %q, %v; want de_AT, true", code, ok)
	}

	// fr has no translated units, the invalid code is dropped
	if _, ok := dir.get(context.Background(), Locale{Language: "fr"}); ok {
		t.Error("Locale without translated units should not be in the directory")
	}
}

func TestDirectory_LazyLoadOnce(t *testing.T) {
	var calls int
	dir, _ := newTestDirectory(t, nil, func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `[{"code":"en","translated":1}]`)
	})

	for i := 0; i < 3; i++ {
		dir.get(context.Background(), Locale{Language: "en"})
	}
	if calls != 1 {
		t.Errorf("Listing should be loaded exactly once, got %d calls", calls)
	}
}

func TestDirectory_ManualMappingWins(t *testing.T) {
	manual := map[string]Locale{
		"myalias": {Language: "de", Region: "DE", Variant: "myalias"},
	}
	dir, _ := newTestDirectory(t, manual, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"code":"myalias","translated":1}]`)
	})

	code, ok := dir.get(context.Background(), Locale{Language: "de", Region: "DE", Variant: "myalias"})
	if !ok || code != "myalias" {
		t.Errorf("Manual mapping should take precedence over the grammar, got %q, %v", code, ok)
	}
}

func TestDirectory_Collision_FirstWins(t *testing.T) {
	// Both codes derive the same Locale {en GB}; the listing delivers
	// en_GB first, so EN_gb must be rejected.
	dir, _ := newTestDirectory(t, nil, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"code":"en_GB","translated":1},
			{"code":"EN_gb","translated":1}
		]`)
	})

	code, ok := dir.get(context.Background(), Locale{Language: "en", Region: "GB"})
	if !ok {
		t.Fatal("Locale should be registered")
	}
	if code != "en_GB" {
		t.Errorf("First registration should win, got %q", code)
	}
}

func TestDirectory_CollisionWithManualMapping(t *testing.T) {
	manual := map[string]Locale{
		"british": {Language: "en", Region: "GB"},
	}
	dir, _ := newTestDirectory(t, manual, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"code":"british","translated":1},
			{"code":"en_GB","translated":1}
		]`)
	})

	code, ok := dir.get(context.Background(), Locale{Language: "en", Region: "GB"})
	if !ok || code != "british" {
		t.Errorf("Manual registration should win over a derived collision, got %q, %v", code, ok)
	}
}

func TestDirectory_LoadFailure(t *testing.T) {
	var fail = true
	var calls int
	dir, _ := newTestDirectory(t, nil, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if fail {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `[{"code":"en","translated":1}]`)
	})

	// First load fails: directory degrades to empty, no retry on lookup.
	if _, ok := dir.get(context.Background(), Locale{Language: "en"}); ok {
		t.Error("Failed load should leave an empty directory")
	}
	dir.get(context.Background(), Locale{Language: "en"})
	if calls != 1 {
		t.Errorf("Plain lookups after a failed load must not retry, got %d calls", calls)
	}

	// An explicit reload after the server recovers repopulates it.
	fail = false
	dir.load(context.Background(), true)
	if code, ok := dir.get(context.Background(), Locale{Language: "en"}); !ok || code != "en" {
		t.Errorf("Explicit reload should repopulate the directory, got %q, %v", code, ok)
	}
}

func TestDirectory_ReloadFailureKeepsSnapshot(t *testing.T) {
	var fail bool
	dir, _ := newTestDirectory(t, nil, func(w http.ResponseWriter, r *http.Request) {
		if fail {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `[{"code":"en","translated":1}]`)
	})

	dir.load(context.Background(), false)

	fail = true
	dir.load(context.Background(), true)

	if code, ok := dir.get(context.Background(), Locale{Language: "en"}); !ok || code != "en" {
		t.Errorf("Failed reload should keep the previous snapshot, got %q, %v", code, ok)
	}
}

func TestDirectory_EmptyListingReplacesSnapshot(t *testing.T) {
	var empty bool
	dir, _ := newTestDirectory(t, nil, func(w http.ResponseWriter, r *http.Request) {
		if empty {
			fmt.Fprint(w, `[]`)
			return
		}
		fmt.Fprint(w, `[{"code":"en","translated":1}]`)
	})

	dir.load(context.Background(), false)

	empty = true
	dir.load(context.Background(), true)

	if _, ok := dir.get(context.Background(), Locale{Language: "en"}); ok {
		t.Error("A successful empty listing replaces the snapshot")
	}
}

func TestDirectory_Clear(t *testing.T) {
	var calls int
	dir, _ := newTestDirectory(t, nil, func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `[{"code":"en","translated":1}]`)
	})

	dir.get(context.Background(), Locale{Language: "en"})
	dir.clear()
	dir.get(context.Background(), Locale{Language: "en"})

	if calls != 2 {
		t.Errorf("A lookup after clear should load again, got %d calls", calls)
	}
}
