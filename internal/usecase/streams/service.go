package streams

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/streamreel/internal/domain/match"
	"github.com/kailas-cloud/streamreel/internal/domain/query"
	"github.com/kailas-cloud/streamreel/internal/domain/stream"
	logpkg "github.com/kailas-cloud/streamreel/internal/logger"
	"github.com/kailas-cloud/streamreel/internal/metrics"
)

// Defaults for the collection loop and response cache.
const (
	DefaultMaxPages  = 50
	DefaultCacheTTL  = 300 * time.Second
	DefaultKeyPrefix = "streamreel:"
)

// Source tells where a response came from.
type Source string

const (
	// SourceCache marks a response served verbatim from the cache.
	SourceCache Source = "HIT"
	// SourceUpstream marks a response built from upstream pages.
	SourceUpstream Source = "MISS"
)

// Config holds collection and cache settings.
type Config struct {
	MaxPages  int
	CacheTTL  time.Duration
	KeyPrefix string
}

// Service collects filtered streams from the upstream behind a response cache.
type Service struct {
	fetch     Fetcher
	cache     Cache
	maxPages  int
	cacheTTL  time.Duration
	keyPrefix string
}

// New creates a streams service. Zero config values fall back to defaults.
func New(fetch Fetcher, cache Cache, cfg Config) *Service {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultKeyPrefix
	}
	return &Service{
		fetch:     fetch,
		cache:     cache,
		maxPages:  cfg.MaxPages,
		cacheTTL:  cfg.CacheTTL,
		keyPrefix: cfg.KeyPrefix,
	}
}

// Streams returns the serialized envelope for q: cached bytes on a hit, otherwise a
// fresh collection that is then stored best-effort. Upstream errors are returned and
// never cached.
func (s *Service) Streams(ctx context.Context, q query.Query) ([]byte, Source, error) {
	log := logpkg.FromContext(ctx)
	key := q.CacheKey(s.keyPrefix)

	if cached, ok := s.cache.Get(ctx, key); ok {
		log.Debug("Served from cache", zap.String("key", key))
		return cached, SourceCache, nil
	}
	log.Debug("Cache miss, building from upstream", zap.String("key", key))

	col, err := s.Collect(ctx, q)
	if err != nil {
		return nil, "", err
	}

	body, err := stream.NewEnvelope(col).Marshal()
	if err != nil {
		return nil, "", fmt.Errorf("marshal envelope: %w", err)
	}

	s.cache.Set(ctx, key, body, s.cacheTTL)
	return body, SourceUpstream, nil
}

// Collect pages through the upstream until limit streams are accepted, pages run out,
// or the page cap is hit. Any upstream error aborts the run with no partial result.
func (s *Service) Collect(ctx context.Context, q query.Query) (*stream.Collection, error) {
	log := logpkg.FromContext(ctx)
	col := stream.NewCollection(q.Limit())
	cursor := ""
	pages := 0
	defer func() { metrics.PagesPerCollect.Observe(float64(pages)) }()

	for pages < s.maxPages {
		page, err := s.fetch.Fetch(ctx, q.CategoryID(), q.PageSize(), cursor)
		pages++
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", pages, err)
		}
		if !page.HasData {
			return col, nil
		}

		for _, rec := range page.Records {
			if !match.Accept(q, rec) {
				continue
			}
			col.Add(stream.FromRecord(rec))
			if col.Len() >= q.Limit() {
				return col, nil
			}
		}

		if page.Cursor == "" {
			return col, nil
		}
		cursor = page.Cursor
	}

	log.Warn("Page cap reached, stopping collection",
		zap.Int("max_pages", s.maxPages),
		zap.Int("collected", col.Len()),
		zap.String("game_id", q.CategoryID()),
	)
	return col, nil
}
