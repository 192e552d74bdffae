// Package slug derives URL-safe identifiers from post titles.
package slug

import (
	"strconv"
	"strings"
	"unicode"
)

// Make derives a slug from title: lower-cased, stripped of everything that is
// not a letter, digit, hyphen or whitespace, with whitespace runs collapsed
// to single hyphens. A positive disambiguator (the post's own ID) is appended
// to keep slugs unique across posts with identical titles.
//
// The function is pure: it is recomputed on every title edit and doubles as
// a cache key component, so identical input must always yield identical
// output. Empty and whitespace-only titles yield an empty string; callers
// must reject that before using it as an external identifier.
func Make(title string, disambiguator uint) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}

	s := strings.Trim(strings.Join(strings.Fields(b.String()), "-"), "-")
	if s == "" {
		return ""
	}
	if disambiguator > 0 {
		s += "-" + strconv.FormatUint(uint64(disambiguator), 10)
	}
	return s
}
