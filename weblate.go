// Package weblate resolves localized texts from a Weblate translation
// server via its REST API.
//
// A Source caches translations per locale, layers region- and
// variant-specific texts over the base language, and refreshes stale
// entries with delta queries so that only rows added or changed since the
// last refresh are transferred.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/openlocale/weblate"
//	)
//
//	func main() {
//	    src, err := weblate.New("https://hosted.weblate.org", "my-project", "frontend",
//	        weblate.WithAuthToken(os.Getenv("WEBLATE_TOKEN")),
//	        weblate.WithTTL(30*time.Minute),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer src.Close()
//
//	    locale, _ := weblate.DeriveLocale("de_AT")
//	    text, ok := src.Resolve(context.Background(), "greeting", locale)
//	    if ok {
//	        fmt.Println(text)
//	    }
//	}
package weblate
