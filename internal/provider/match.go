package provider

import (
	"fmt"
	"html"
	"regexp"
)

// Compiled once at init and shared process-wide; all matchers are immutable.
var (
	rePlayerIframe = regexp.MustCompile(
		`<iframe[^>]* (?:data-)?src="(?P<embed_url>https://player\.vimeo\.com/video/[^"]+)"`)

	reShowcaseIframe = regexp.MustCompile(
		`<iframe[^>]* (?:data-)?src="(?P<embed_url>https://vimeo\.com/showcase/[^"]+)"`)

	// The showcase page carries its clip list as a schema.org ItemList blob.
	reShowcaseConfig = regexp.MustCompile(
		`\[\{"itemListElement":(?P<config>\[.*?\]),"@type":"ItemList","@context":"http://schema\.org"\}\]`)

	reTitleTag = regexp.MustCompile(`<title>(?P<title>.*?)</title>`)

	reEventURL = regexp.MustCompile(
		`https://vimeo\.com/event/(?P<event_id>\d+)(?:/(?P<event_hash>[\da-f]+))?`)

	reNativeVideo = regexp.MustCompile(`^https://vimeo\.com/\d+`)
)

// PlayerEmbeds returns the player embed URLs found in an HTML body,
// attribute-unescaped, in document order.
func PlayerEmbeds(body string) []string {
	return embedMatches(rePlayerIframe, body)
}

// ShowcaseEmbeds returns the showcase embed URLs found in an HTML body.
func ShowcaseEmbeds(body string) []string {
	return embedMatches(reShowcaseIframe, body)
}

func embedMatches(re *regexp.Regexp, body string) []string {
	var urls []string
	for _, m := range re.FindAllStringSubmatch(body, -1) {
		urls = append(urls, html.UnescapeString(m[1]))
	}
	return urls
}

// ShowcaseConfig extracts the raw clip-list JSON array from a showcase page.
func ShowcaseConfig(body string) (string, bool) {
	m := reShowcaseConfig.FindStringSubmatch(body)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// PageTitle extracts and entity-decodes the <title> contents of a page.
func PageTitle(body string) (string, bool) {
	m := reTitleTag.FindStringSubmatch(body)
	if m == nil {
		return "", false
	}
	return html.UnescapeString(m[1]), true
}

// EventParams extracts the numeric event ID and the optional unlisted hash
// from an event URL.
func EventParams(eventURL string) (id, hash string, err error) {
	m := reEventURL.FindStringSubmatch(eventURL)
	if m == nil {
		return "", "", fmt.Errorf("%q is not a valid event URL", eventURL)
	}
	return m[1], m[2], nil
}
