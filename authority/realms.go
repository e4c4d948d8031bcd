package authority

import (
	"slices"
	"strings"
)

// realmPrefix binds one path prefix to the realm it belongs to.
type realmPrefix struct {
	prefix string
	realm  string
}

// realmMap resolves request paths to realms by longest prefix. A prefix
// matches the path itself and everything below it; "/" matches every path.
type realmMap struct {
	prefixes []realmPrefix
}

// newRealmMap builds a resolver from a prefix to realm mapping. Prefixes
// are normalized (trailing slash stripped) and ordered longest first, ties
// broken lexicographically, so resolution is deterministic regardless of
// map iteration order.
func newRealmMap(shares map[string]string) realmMap {
	m := realmMap{prefixes: make([]realmPrefix, 0, len(shares))}

	for prefix, realm := range shares {
		if prefix != "/" {
			prefix = strings.TrimSuffix(prefix, "/")
		}

		if prefix == "" {
			prefix = "/"
		}

		m.prefixes = append(m.prefixes, realmPrefix{prefix: prefix, realm: realm})
	}

	slices.SortFunc(m.prefixes, func(a, b realmPrefix) int {
		if d := len(b.prefix) - len(a.prefix); d != 0 {
			return d
		}

		return strings.Compare(a.prefix, b.prefix)
	})

	return m
}

// resolve returns the realm of the longest prefix matching path, or "/"
// when no prefix matches.
func (m realmMap) resolve(path string) string {
	for _, p := range m.prefixes {
		if p.prefix == "/" || path == p.prefix || strings.HasPrefix(path, p.prefix+"/") {
			return p.realm
		}
	}

	return "/"
}
