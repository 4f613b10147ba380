// Package roles canonicalizes free-text credit role strings.
//
// Upstream credit data is noisy: bracketed qualifiers ("Vocals [lead]"),
// comma-joined lists ("Guitar, Bass"), inconsistent dashes and casing. The
// pipeline here reduces all of that to a stable set of role names that the
// filter layer can key on.
package roles

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

var (
	bracketRe    = regexp.MustCompile(`\[[^\[\]]*\]`)
	dashRunRe    = regexp.MustCompile(`[-\x{2013}\x{2014}]+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Normalize canonicalizes raw role strings into a deduplicated set,
// returned sorted for deterministic iteration. Empty and all-bracketed
// inputs normalize to nothing and are dropped.
//
// The steps run in a fixed order; each assumes the previous cleanup:
// bracket stripping, trimming, comma splitting, dash replacement,
// capitalization, empty removal, deduplication.
func Normalize(raw []string) []string {
	seen := make(map[string]bool)

	for _, r := range raw {
		r = stripBrackets(r)
		r = strings.TrimSpace(r)

		for _, part := range strings.Split(r, ",") {
			part = dashRunRe.ReplaceAllString(part, " ")
			part = whitespaceRe.ReplaceAllString(part, " ")
			part = strings.TrimSpace(part)
			part = capitalizeWords(part)
			if part == "" {
				continue
			}
			seen[part] = true
		}
	}

	out := make([]string, 0, len(seen))
	for role := range seen {
		out = append(out, role)
	}
	sort.Strings(out)
	return out
}

// stripBrackets removes bracket-wrapped qualifiers, innermost first, so
// nested brackets are fully removed.
func stripBrackets(s string) string {
	for {
		stripped := bracketRe.ReplaceAllString(s, "")
		if stripped == s {
			return stripped
		}
		s = stripped
	}
}

// capitalizeWords uppercases the first letter and the first letter after
// each whitespace run. Small words are not lowered; this is a heuristic,
// not full title-casing.
func capitalizeWords(s string) string {
	runes := []rune(s)
	atBoundary := true
	for i, r := range runes {
		if unicode.IsSpace(r) {
			atBoundary = true
			continue
		}
		if atBoundary {
			runes[i] = unicode.ToUpper(r)
			atBoundary = false
		}
	}
	return string(runes)
}
