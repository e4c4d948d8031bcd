package httpauth

import (
	"regexp"
	"strings"
)

// AuthDirectives maps directive names from an Authorization or
// WWW-Authenticate header to their values. Keys are case-sensitive tokens
// (username, realm, nonce, ...); duplicates resolve to last write wins.
type AuthDirectives map[string]string

// Compiled once at startup; request handling only executes them.
var (
	// directivePattern takes key=value pairs whose value runs to the next
	// comma.
	directivePattern = regexp.MustCompile(`(\w+)=([^,]*),`)

	// quotedDirectivePattern takes only quoted values with embedded
	// literal commas. Some clients do not percent-encode commas inside
	// uri=, which splits their value across the primary pass.
	quotedDirectivePattern = regexp.MustCompile(`(\w+)=("[^"]*,[^"]*"),`)

	// schemeTokenPattern matches the scheme token opening a header value.
	schemeTokenPattern = regexp.MustCompile(`^\w+`)
)

// parseDirectives tokenizes a comma-delimited authentication header value.
// Two passes run over the value with a trailing comma appended: the primary
// pass splits on every comma, the fallback pass recovers quoted values that
// the primary pass cut apart. Fallback matches apply after primary matches,
// so the fallback value wins on key collision. Values are stripped of
// surrounding whitespace, then of surrounding quotes.
func parseDirectives(header string) AuthDirectives {
	src := header + ","

	matches := directivePattern.FindAllStringSubmatch(src, -1)
	matches = append(matches, quotedDirectivePattern.FindAllStringSubmatch(src, -1)...)

	directives := make(AuthDirectives, len(matches))
	for _, match := range matches {
		value := strings.TrimSpace(match[2])
		directives[match[1]] = strings.Trim(value, `"`)
	}

	return directives
}

// authScheme returns the lowercased scheme token that opens an
// Authorization or WWW-Authenticate header value, or an empty string when
// the value does not begin with one.
func authScheme(header string) string {
	return strings.ToLower(schemeTokenPattern.FindString(header))
}
