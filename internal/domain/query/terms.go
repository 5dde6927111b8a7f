package query

import (
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Terms is a normalized filter term set: lowercased, deduplicated, sorted.
// An empty Terms means "no filter".
type Terms []string

// ParseTerms splits a comma, semicolon or whitespace delimited list into Terms.
func ParseTerms(raw string) Terms {
	if raw == "" {
		return nil
	}

	parts := strings.FieldsFunc(raw, isDelimiter)
	if len(parts) == 0 {
		return nil
	}

	terms := make(Terms, 0, len(parts))
	for _, p := range parts {
		terms = append(terms, Lower(p))
	}
	slices.Sort(terms)
	return slices.Compact(terms)
}

func isDelimiter(r rune) bool {
	return r == ',' || r == ';' || unicode.IsSpace(r)
}

// Empty reports whether the set has no terms.
func (t Terms) Empty() bool { return len(t) == 0 }

// Contains reports whether term (already lowercased) is in the set.
func (t Terms) Contains(term string) bool {
	_, found := slices.BinarySearch(t, term)
	return found
}

// String joins the terms back into the delimited form accepted by ParseTerms.
func (t Terms) String() string { return strings.Join(t, ",") }

// Lower applies Unicode-aware lowercasing (root locale).
// A Caser is stateful, so one is built per call.
func Lower(s string) string {
	return cases.Lower(language.Und).String(s)
}
