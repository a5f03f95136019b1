package target

import (
	"net/url"
	"strings"
)

// SyntacticNormalize is the fallback address canonicalization applied when a
// target cannot parse the address: strip the fragment and any trailing slash.
func SyntacticNormalize(raw string) string {
	if idx := strings.Index(raw, "#"); idx >= 0 {
		raw = raw[:idx]
	}
	raw = strings.TrimRight(raw, "/")
	return raw
}

// PathAndQuery returns the canonical path (plus query when present) of an
// address. Malformed addresses fall back to the syntactic strip.
func PathAndQuery(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return SyntacticNormalize(raw)
	}
	path := strings.TrimRight(u.Path, "/")
	if u.RawQuery != "" {
		return path + "?" + u.RawQuery
	}
	return path
}

// PathOnly returns the canonical path of an address with the query stripped.
// Targets whose routing embeds the conversation id in the path use this so
// query-string noise does not register as a conversation switch.
func PathOnly(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return SyntacticNormalize(raw)
	}
	return strings.TrimRight(u.Path, "/")
}

// ConversationPath extracts "<prefix><id>" from an address whose path embeds
// a conversation id after the given prefix (for example "/c/" or "/chat/").
// Addresses without the prefix fall back to the path with query stripped.
func ConversationPath(raw, prefix string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return SyntacticNormalize(raw)
	}

	path := u.Path
	idx := strings.Index(path, prefix)
	if idx < 0 {
		return strings.TrimRight(path, "/")
	}

	rest := path[idx+len(prefix):]
	if end := strings.IndexByte(rest, '/'); end >= 0 {
		rest = rest[:end]
	}
	if rest == "" {
		return strings.TrimRight(path, "/")
	}
	return path[:idx] + prefix + rest
}

// HostMatches reports whether the page address's hostname matches one of the
// target's hostnames, exactly or by substring.
func HostMatches(pageURL string, hostnames []string) bool {
	u, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	for _, h := range hostnames {
		h = strings.ToLower(h)
		if host == h || strings.Contains(host, h) {
			return true
		}
	}
	return false
}
