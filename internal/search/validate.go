package search

import (
	"regexp"
	"strings"
)

// MaxQueryLength bounds accepted search input
const MaxQueryLength = 50

// Queries are validated against an allow-list before touching any
// store: letters, digits, underscore and space only. Anything else is
// rejected outright rather than escaped.
var queryPattern = regexp.MustCompile(`^[a-zA-Z0-9_ ]*$`)

// ValidateQuery normalizes and checks a raw search query. It returns
// the trimmed query and whether it is safe to execute. Empty input is
// valid and yields empty results.
func ValidateQuery(raw string) (string, bool) {
	q := strings.TrimSpace(raw)
	if len(q) > MaxQueryLength {
		return "", false
	}
	if !queryPattern.MatchString(q) {
		return "", false
	}
	return q, true
}
