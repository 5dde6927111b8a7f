package streams

import (
	"context"
	"time"

	"github.com/kailas-cloud/streamreel/internal/domain/stream"
)

// Fetcher fetches one page of live streams for a category.
type Fetcher interface {
	Fetch(ctx context.Context, categoryID string, pageSize int, cursor string) (stream.Page, error)
}

// Cache stores serialized responses. Implementations never fail the caller.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool
}
