package hotels

import (
	"strings"
	"unicode/utf8"
)

const (
	// minQueryRunes is the shortest query worth scanning the catalog for.
	// Shorter queries return an empty set instead of matching everything.
	minQueryRunes = 2
	// maxResults bounds the response size of an unscoped catalog search.
	maxResults = 50
)

// normalizeQuery trims the query and reports whether it is long enough to
// search. Length is measured in runes, not bytes; "호텔" is two characters.
func normalizeQuery(q string) (string, bool) {
	q = strings.TrimSpace(q)
	return q, utf8.RuneCountInString(q) >= minQueryRunes
}

// likePattern escapes LIKE metacharacters and wraps the query for a
// substring match.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}
