package helix

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/streamreel/internal/domain"
	"github.com/kailas-cloud/streamreel/internal/domain/stream"
)

type stubFetcher struct {
	calls int
	err   error
}

func (s *stubFetcher) Fetch(context.Context, string, int, string) (stream.Page, error) {
	s.calls++
	if s.err != nil {
		return stream.Page{}, s.err
	}
	return stream.Page{HasData: true}, nil
}

func testBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:         "test",
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		FailureRatio: 0.5,
		MinRequests:  2,
	}
}

func TestBreaker_PassesThrough(t *testing.T) {
	inner := &stubFetcher{}
	b := NewBreakerFetcher(inner, testBreakerConfig(), zap.NewNop())

	page, err := b.Fetch(context.Background(), "1", 20, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !page.HasData || inner.calls != 1 {
		t.Errorf("expected one call with data, got calls=%d page=%+v", inner.calls, page)
	}
}

func TestBreaker_OpensAndFailsFast(t *testing.T) {
	inner := &stubFetcher{err: domain.NewUpstreamError(500, "boom")}
	b := NewBreakerFetcher(inner, testBreakerConfig(), zap.NewNop())
	ctx := context.Background()

	for range 2 {
		if _, err := b.Fetch(ctx, "1", 20, ""); !errors.Is(err, domain.ErrUpstream) {
			t.Fatalf("expected upstream error, got %v", err)
		}
	}
	if b.State() != gobreaker.StateOpen {
		t.Fatalf("expected open breaker, got %s", b.State())
	}

	_, err := b.Fetch(ctx, "1", 20, "")
	var upErr *domain.UpstreamError
	if !errors.As(err, &upErr) || upErr.HTTPStatus != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 UpstreamError from open breaker, got %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("open breaker must not call upstream, calls=%d", inner.calls)
	}
}

func TestBreaker_IgnoresCanceled(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(twoStreams))
	})
	b := NewBreakerFetcher(c, testBreakerConfig(), zap.NewNop())

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	for range 5 {
		if _, err := b.Fetch(canceled, "1", 20, ""); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected cancellation, got %v", err)
		}
	}
	if b.State() != gobreaker.StateClosed {
		t.Fatalf("cancellations must not trip the breaker, got %s", b.State())
	}

	page, err := b.Fetch(context.Background(), "1", 20, "")
	if err != nil || !page.HasData {
		t.Fatalf("healthy call after cancellations must pass, got %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("expected one upstream hit, got %d", hits.Load())
	}
}

func TestBreaker_TransportFailuresTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := server.URL
	server.Close()

	c := NewClient(&Config{BaseURL: addr, Timeout: time.Second, Logger: zap.NewNop()})
	b := NewBreakerFetcher(c, testBreakerConfig(), zap.NewNop())

	for range 2 {
		_, _ = b.Fetch(context.Background(), "1", 20, "")
	}
	if b.State() != gobreaker.StateOpen {
		t.Errorf("connection failures must trip the breaker, got %s", b.State())
	}
}
