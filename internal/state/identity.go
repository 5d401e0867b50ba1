package state

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// CanonicalURL normalizes a target URL so that two resolutions of the same
// underlying media map to the same key: scheme and host are lowercased and
// the fragment is dropped. Everything else (path, query) is significant.
func CanonicalURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return strings.TrimSpace(raw)
	}
	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	return u.String()
}

// Identity returns the stable store key for a target URL.
func Identity(raw string) string {
	h := sha256.Sum256([]byte(CanonicalURL(raw)))
	return hex.EncodeToString(h[:8]) // 16 chars
}
