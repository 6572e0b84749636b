package http1

import "strings"

// SplitTarget cuts a request-target at its first '?'. Later '?' characters
// stay in the query.
func SplitTarget(target string) (path, query string) {
	path, query, _ = strings.Cut(target, "?")
	return path, query
}

// NormalizePath trims trailing slashes while the path is longer than one
// byte, so "/foo///" becomes "/foo" and "/" stays "/". Nothing else is
// rewritten: no percent-decoding, no dot-segment removal.
func NormalizePath(p string) string {
	for len(p) > 1 && p[len(p)-1] == '/' {
		p = p[:len(p)-1]
	}
	return p
}

// ParseQuery splits q on '&' and keeps the tokens that split on '=' into
// exactly two parts. Keys and values are taken verbatim; the last duplicate
// wins.
func ParseQuery(q string) map[string]string {
	m := make(map[string]string)
	if q == "" {
		return m
	}
	for _, tok := range strings.Split(q, "&") {
		kv := strings.Split(tok, "=")
		if len(kv) == 2 {
			m[kv[0]] = kv[1]
		}
	}
	return m
}
