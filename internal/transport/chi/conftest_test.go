package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/streamreel/internal/db"
	"github.com/kailas-cloud/streamreel/internal/repository/respcache"
	"github.com/kailas-cloud/streamreel/internal/transport/helix"
	healthuc "github.com/kailas-cloud/streamreel/internal/usecase/health"
	streamsuc "github.com/kailas-cloud/streamreel/internal/usecase/streams"
)

// memStore is an in-memory KV store standing in for Redis.
type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemStore() *memStore { return &memStore{data: map[string][]byte{}} }

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) SetWithTTL(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	m.data[key] = value
	return nil
}

func (m *memStore) Ping(context.Context) error { return nil }

// fakeHelix serves Helix pages keyed by the "after" cursor ("" = first page).
type fakeHelix struct {
	calls  atomic.Int32
	status atomic.Int32 // non-zero fails every request with that status
	pages  map[string]string
}

func (f *fakeHelix) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)
	if status := f.status.Load(); status != 0 {
		w.WriteHeader(int(status))
		_, _ = w.Write([]byte(`{"error":"Internal Server Error","status":500,"message":""}`))
		return
	}
	body, ok := f.pages[r.URL.Query().Get("after")]
	if !ok {
		body = `{"data":[],"pagination":{}}`
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

type testEnv struct {
	handler  http.Handler
	upstream *fakeHelix
	store    *memStore
	service  *streamsuc.Service
}

func newTestEnv(t *testing.T, upstream *fakeHelix, cfg RouterConfig) *testEnv {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	logger := zap.NewNop()
	store := newMemStore()
	client := helix.NewClient(&helix.Config{
		BaseURL:     srv.URL,
		ClientID:    "cid",
		AccessToken: "tok",
		Timeout:     2 * time.Second,
		Logger:      logger,
	})
	svc := streamsuc.New(client, respcache.NewRedis(store, nil, logger), streamsuc.Config{
		MaxPages:  10,
		CacheTTL:  300 * time.Second,
		KeyPrefix: "test:",
	})
	server := NewServer(svc, healthuc.New(store), Options{DefaultLimit: 20, PageSize: 50}, logger)

	return &testEnv{
		handler:  NewRouter(server, cfg, logger),
		upstream: upstream,
		store:    store,
		service:  svc,
	}
}

func (e *testEnv) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}
