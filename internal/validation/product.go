package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

const (
	MaxProductNameLength = 30
	MaxProductCategories = 3
)

var slugPattern = regexp.MustCompile(`^[\p{Ll}\p{Lm}\p{Lo}\p{N}_-]+$`)

func slugRune(r rune) bool {
	return unicode.IsLower(r) || unicode.In(r, unicode.Lm, unicode.Lo) || unicode.IsNumber(r) || r == '_'
}

// Slugify derives a product slug from a name. The name is lowercased and every
// run of other characters (whitespace, periods, punctuation) becomes a single
// hyphen, trimmed at both ends. The result always passes ValidateSlug unless
// it is empty.
func Slugify(name string) string {
	var b strings.Builder
	gap := false
	for _, r := range strings.ToLower(name) {
		if !slugRune(r) {
			gap = true
			continue
		}
		if gap && b.Len() > 0 {
			b.WriteByte('-')
		}
		gap = false
		b.WriteRune(r)
	}
	return b.String()
}

// ValidateSlug rejects slugs that would not survive a URL path segment.
func ValidateSlug(slug string) error {
	if slug == "" {
		return errors.New("slug is required")
	}
	if !slugPattern.MatchString(slug) {
		return errors.New("slug may only contain lowercase letters, numbers and hyphens")
	}
	return nil
}

// NormalizeCategories trims names and drops blanks and exact duplicates,
// preserving first-seen order. Matching stays case-sensitive.
func NormalizeCategories(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
