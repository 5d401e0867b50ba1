// Package clipboard supplies the fallback input source: when no URLs are
// given on the command line, the system clipboard is checked for one.
package clipboard

import (
	"net/url"
	"strings"

	"github.com/atotto/clipboard"
)

var readAll = clipboard.ReadAll

// ExtractURL returns the clipboard text if it is a single plausible
// http(s) URL, empty string otherwise. Multi-line content and oversized
// blobs are rejected outright; pasting a document must never enqueue
// anything.
func ExtractURL(text string) string {
	text = strings.TrimSpace(text)

	if len(text) > 2048 || strings.ContainsAny(text, "\n\r") {
		return ""
	}
	if !strings.HasPrefix(text, "http://") && !strings.HasPrefix(text, "https://") {
		return ""
	}

	parsed, err := url.Parse(text)
	if err != nil || parsed.Host == "" {
		return ""
	}
	return parsed.String()
}

// ReadURL reads the system clipboard and validates its content. Errors
// (headless session, no clipboard utility) degrade to "nothing found".
func ReadURL() string {
	text, err := readAll()
	if err != nil {
		return ""
	}
	return ExtractURL(text)
}
