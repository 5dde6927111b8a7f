// Package match decides whether an upstream stream passes the keyword and tag filters.
package match

import (
	"strings"

	"github.com/kailas-cloud/streamreel/internal/domain/query"
	"github.com/kailas-cloud/streamreel/internal/domain/stream"
)

// Keywords reports whether the title contains any term as a substring.
// Empty terms always match.
func Keywords(terms query.Terms, title string) bool {
	if terms.Empty() {
		return true
	}
	haystack := query.Lower(title)
	for _, term := range terms {
		if term != "" && strings.Contains(haystack, term) {
			return true
		}
	}
	return false
}

// Tags reports whether any term equals any tag, ignoring case.
// Empty terms always match.
func Tags(terms query.Terms, tags []string) bool {
	if terms.Empty() {
		return true
	}
	for _, tag := range tags {
		if terms.Contains(query.Lower(tag)) {
			return true
		}
	}
	return false
}

// Accept reports whether a record passes both filters of q.
func Accept(q query.Query, rec stream.Record) bool {
	return Keywords(q.Keywords(), rec.Title) && Tags(q.Tags(), rec.Tags)
}
