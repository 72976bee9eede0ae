// Package sanitize builds the canonical query string pushed to the browser.
//
// Embed-only parameters ("embed" and "embed_options") are controlled by the
// host page, not by the application. They are stripped from the app's
// parameters and re-attached from the previously recorded query string so an
// embedded app cannot drop or forge them.
package sanitize

import (
	"iter"
	"net/url"
	"slices"
	"strings"
)

const (
	// EmbedParam marks the app as embedded in another page.
	EmbedParam = "embed"

	// EmbedOptionsParam carries embed display options.
	EmbedOptionsParam = "embed_options"
)

// ReservedParams lists the embed-only keys in the order they are appended.
var ReservedParams = []string{EmbedParam, EmbedOptionsParam}

// Source is the read view of the parameters being sanitized.
type Source interface {
	Keys() iter.Seq[string]
	GetAll(key string) []string
}

// IsReserved reports whether key is an embed-only parameter.
// Matching is case-insensitive.
func IsReserved(key string) bool {
	lower := strings.ToLower(key)
	for _, r := range ReservedParams {
		if lower == r {
			return true
		}
	}
	return false
}

// EnsureNoEmbedParams encodes src without its embed-only keys and appends the
// embed-only values found in previous.
func EnsureNoEmbedParams(src Source, previous string) string {
	var b strings.Builder
	for key := range src.Keys() {
		if IsReserved(key) {
			continue
		}
		for _, v := range src.GetAll(key) {
			writePair(&b, key, v)
		}
	}
	appPart := b.String()
	embedPart := EmbedParams(previous)

	if appPart == "" {
		return embedPart
	}
	if embedPart == "" {
		return appPart
	}
	return appPart + "&" + embedPart
}

// EmbedParams extracts the embed-only parameters from a raw query string and
// re-encodes them. Values are lower-cased, de-duplicated and sorted.
// Malformed pairs in raw are skipped.
func EmbedParams(raw string) string {
	// ParseQuery keeps every pair it could decode even when it returns an error.
	parsed, _ := url.ParseQuery(raw)

	var b strings.Builder
	for _, reserved := range ReservedParams {
		for _, v := range extractValues(parsed, reserved) {
			writePair(&b, reserved, v)
		}
	}
	return b.String()
}

func extractValues(parsed url.Values, key string) []string {
	seen := make(map[string]struct{})
	var out []string
	for k, vs := range parsed {
		if strings.ToLower(k) != key {
			continue
		}
		for _, v := range vs {
			v = strings.ToLower(v)
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return out
}

func writePair(b *strings.Builder, key, value string) {
	if b.Len() > 0 {
		b.WriteByte('&')
	}
	b.WriteString(url.QueryEscape(key))
	b.WriteByte('=')
	b.WriteString(url.QueryEscape(value))
}
