package query

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/streamreel/internal/domain"
)

// Query parameter limits.
const (
	DefaultLimit    = 20
	DefaultPageSize = 50
	// MaxPageSize is the largest "first" value Helix accepts.
	MaxPageSize = 100
)

// Query is a validated stream filter (game_id, keywords, tags, limit).
type Query struct {
	categoryID string
	keywords   Terms
	tags       Terms
	limit      int
	pageSize   int
}

// New validates and normalizes filter parameters.
// limit < 1 is coerced to 1. pageSize <= 0 falls back to DefaultPageSize and is
// capped at MaxPageSize; the effective page size never exceeds limit.
func New(categoryID string, keywords, tags Terms, limit, pageSize int) (Query, error) {
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" {
		return Query{}, fmt.Errorf("validate query: %w", domain.ErrMissingCategory)
	}
	if limit < 1 {
		limit = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if pageSize > limit {
		pageSize = limit
	}
	return Query{
		categoryID: categoryID,
		keywords:   keywords,
		tags:       tags,
		limit:      limit,
		pageSize:   pageSize,
	}, nil
}

// CategoryID returns the upstream category (game_id).
func (q Query) CategoryID() string { return q.categoryID }

// Keywords returns the title keyword terms.
func (q Query) Keywords() Terms { return q.keywords }

// Tags returns the tag terms.
func (q Query) Tags() Terms { return q.tags }

// Limit returns the result-count budget.
func (q Query) Limit() int { return q.limit }

// PageSize returns the per-page size requested from the upstream.
func (q Query) PageSize() int { return q.pageSize }
