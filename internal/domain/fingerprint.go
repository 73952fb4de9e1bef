package domain

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"regexp"
	"strings"
)

var whitespaceExpr = regexp.MustCompile(`\s+`)

// trackingParams are query keys stripped during URL canonicalization so
// the same article shared with different campaign tags dedups correctly.
var trackingParams = map[string]struct{}{
	"ref":      {},
	"fbclid":   {},
	"gclid":    {},
	"mc_cid":   {},
	"mc_eid":   {},
	"igshid":   {},
	"referrer": {},
}

// Fingerprint derives the stable dedup identity of an article from its
// normalized title and canonical URL. Two articles with equal fingerprints
// are the same logical item even when fetched from different sources.
func Fingerprint(title, rawURL string) string {
	normalized := strings.ToLower(strings.TrimSpace(title))
	normalized = whitespaceExpr.ReplaceAllString(normalized, " ")

	sum := sha1.Sum([]byte(normalized + "|" + CanonicalURL(rawURL)))
	return hex.EncodeToString(sum[:])
}

// CanonicalURL lower-cases the scheme and host, drops the fragment and any
// tracking parameters, and trims a trailing slash. Unparsable input falls
// back to trimmed lower-case form so fingerprinting never fails.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return strings.ToLower(raw)
	}

	parsed.Fragment = ""
	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Path = strings.TrimSuffix(parsed.Path, "/")

	query := parsed.Query()
	for key := range query {
		lower := strings.ToLower(key)
		if _, drop := trackingParams[lower]; drop || strings.HasPrefix(lower, "utm_") {
			query.Del(key)
		}
	}
	parsed.RawQuery = query.Encode()

	return parsed.String()
}
