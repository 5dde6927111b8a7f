package streams

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/streamreel/internal/domain/query"
	"github.com/kailas-cloud/streamreel/internal/domain/stream"
)

type fetchCall struct {
	categoryID string
	pageSize   int
	cursor     string
}

// mockFetcher serves scripted pages in order; errs[i] fails call i.
type mockFetcher struct {
	pages []stream.Page
	errs  map[int]error
	calls []fetchCall
}

func (m *mockFetcher) Fetch(_ context.Context, categoryID string, pageSize int, cursor string) (stream.Page, error) {
	i := len(m.calls)
	m.calls = append(m.calls, fetchCall{categoryID, pageSize, cursor})
	if err := m.errs[i]; err != nil {
		return stream.Page{}, err
	}
	if i >= len(m.pages) {
		return stream.Page{HasData: true}, nil
	}
	return m.pages[i], nil
}

// mockCache is an in-memory Cache recording writes.
type mockCache struct {
	data map[string][]byte
	ttls map[string]time.Duration
	sets int
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *mockCache) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := m.data[key]
	return v, ok
}

func (m *mockCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) bool {
	m.sets++
	m.data[key] = value
	m.ttls[key] = ttl
	return true
}

func rec(login, title string, tags ...string) stream.Record {
	return stream.Record{
		UserName:     login,
		UserLogin:    login,
		Title:        title,
		ThumbnailURL: "https://static-cdn.jtvnw.net/previews-ttv/live_user_" + login + "-{width}x{height}.jpg",
		Tags:         tags,
	}
}

func page(cursor string, records ...stream.Record) stream.Page {
	return stream.Page{Records: records, Cursor: cursor, HasData: true}
}

func mustQuery(t *testing.T, game, kw, tags string, limit int) query.Query {
	t.Helper()
	q, err := query.New(game, query.ParseTerms(kw), query.ParseTerms(tags), limit, 50)
	if err != nil {
		t.Fatalf("query.New: %v", err)
	}
	return q
}

func logins(col *stream.Collection) []string {
	out := make([]string, 0, col.Len())
	for _, s := range col.Items() {
		out = append(out, s.UserLogin)
	}
	return out
}
