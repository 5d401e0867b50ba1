// Package provider classifies input URLs and extracts embedded video
// identifiers from known page and API shapes. Matching is deliberately
// pattern-based rather than a full document parse: the inputs are narrow,
// known markup fragments, and targeted expressions survive unrelated page
// changes better than a DOM walk would.
package provider

import (
	"net/url"
	"strings"
)

// Kind identifies which resolution chain applies to an input URL.
// It is determined once from the input and never changes afterwards.
type Kind string

const (
	KindUnknown     Kind = "unknown"
	KindPage        Kind = "page"
	KindPlayer      Kind = "player"
	KindShowcase    Kind = "showcase"
	KindEvent       Kind = "event"
	KindPassthrough Kind = "passthrough"
)

func (k Kind) String() string {
	return string(k)
}

const (
	playerPrefix   = "https://player.vimeo.com/video/"
	showcasePrefix = "https://vimeo.com/showcase/"
	eventPrefix    = "https://vimeo.com/event/"
)

// Detect classifies a raw input URL. Anything that is a valid http(s) URL
// but matches no specific provider shape is treated as a generic page to
// be scanned for embeds.
func Detect(raw string) Kind {
	s := strings.TrimSpace(raw)
	if s == "" {
		return KindUnknown
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return KindUnknown
	}

	switch {
	case strings.HasPrefix(s, playerPrefix):
		return KindPlayer
	case strings.HasPrefix(s, showcasePrefix):
		return KindShowcase
	case strings.HasPrefix(s, eventPrefix):
		return KindEvent
	case reNativeVideo.MatchString(s):
		// A plain vimeo.com/<id> page is natively supported by the
		// downloader; no extraction needed.
		return KindPassthrough
	}

	return KindPage
}

// PageOrigin returns "scheme://host/" for use as a referer when resolving
// embeds found on the page.
func PageOrigin(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host + "/"
}
