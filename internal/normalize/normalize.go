// Package normalize produces the canonical forms stored alongside raw
// company and contact fields for equality-based duplicate lookup.
package normalize

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldDiacritics decomposes and strips combining marks ("Café" -> "Cafe").
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// CompanyName lowercases, folds diacritics and collapses every run of
// non-alphanumeric characters into a single hyphen: "ACME Corp." -> "acme-corp".
// Entity suffixes are kept; "Acme" and "Acme Corp" are different keys.
func CompanyName(name string) string {
	s := strings.ToLower(foldDiacritics(strings.TrimSpace(name)))
	s = strings.ReplaceAll(s, "&", " and ")
	return hyphenate(s)
}

// Slug is CompanyName without the ampersand rewrite, for URL path segments.
func Slug(s string) string {
	return hyphenate(strings.ToLower(foldDiacritics(strings.TrimSpace(s))))
}

func hyphenate(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSep := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// Website reduces a URL to its bare lowercase host without scheme, "www.",
// credentials, port, path, query or fragment. Returns "" when no host can be
// recovered.
func Website(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "http://" + strings.TrimPrefix(s, "//")
	}

	u, err := url.Parse(s)
	if err != nil {
		return ""
	}

	host := u.Hostname()
	host = strings.TrimSuffix(host, ".")
	host = strings.TrimPrefix(host, "www.")
	if !strings.Contains(host, ".") {
		return ""
	}
	return host
}

// Email trims and lowercases an address. Returns "" for blank input.
func Email(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
