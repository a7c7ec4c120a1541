package extract

import "unicode/utf8"

// Excerpt shortens raw to at most limit runes, ellipsis included, for
// embedding model output in a default payload. It never splits a UTF-8
// sequence.
func Excerpt(raw string, limit int, ellipsis string) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(raw) <= limit {
		return raw
	}

	keep := limit - utf8.RuneCountInString(ellipsis)
	if keep < 0 {
		return prefix(ellipsis, limit)
	}
	return prefix(raw, keep) + ellipsis
}

// prefix returns the first n runes of s.
func prefix(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
