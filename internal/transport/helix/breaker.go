package helix

import (
	"context"
	"errors"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/streamreel/internal/domain"
	"github.com/kailas-cloud/streamreel/internal/domain/stream"
	"github.com/kailas-cloud/streamreel/internal/metrics"
)

// Fetcher fetches one upstream page.
type Fetcher interface {
	Fetch(ctx context.Context, categoryID string, pageSize int, cursor string) (stream.Page, error)
}

// BreakerConfig holds circuit breaker thresholds.
type BreakerConfig struct {
	Name         string
	MaxRequests  uint32        // probes allowed in half-open state
	Interval     time.Duration // count reset period in closed state
	Timeout      time.Duration // open -> half-open delay
	FailureRatio float64
	MinRequests  uint32
}

// BreakerFetcher wraps a Fetcher with a circuit breaker. It never retries: an open
// circuit fails the page immediately with a 503 UpstreamError.
type BreakerFetcher struct {
	next   Fetcher
	cb     *gobreaker.CircuitBreaker[stream.Page]
	name   string
	logger *zap.Logger
}

var _ Fetcher = (*BreakerFetcher)(nil)

// NewBreakerFetcher creates a circuit-breaking Fetcher.
func NewBreakerFetcher(next Fetcher, cfg BreakerConfig, logger *zap.Logger) *BreakerFetcher {
	if cfg.Name == "" {
		cfg.Name = "helix-api"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(stateToFloat(gobreaker.StateClosed))

	cb := gobreaker.NewCircuitBreaker[stream.Page](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= cfg.FailureRatio {
				logger.Warn("Opening circuit",
					zap.String("breaker", cfg.Name),
					zap.Uint32("failures", counts.TotalFailures),
					zap.Float64("failure_rate", ratio),
				)
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("Circuit breaker state transition",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
		// A disconnected caller says nothing about upstream health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &BreakerFetcher{next: next, cb: cb, name: cfg.Name, logger: logger}
}

// Fetch runs the wrapped fetch under the breaker.
func (b *BreakerFetcher) Fetch(ctx context.Context, categoryID string, pageSize int, cursor string) (stream.Page, error) {
	page, err := b.cb.Execute(func() (stream.Page, error) {
		return b.next.Fetch(ctx, categoryID, pageSize, cursor)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.UpstreamRequestsTotal.WithLabelValues("rejected").Inc()
		b.logger.Warn("Upstream request rejected by circuit breaker", zap.String("breaker", b.name))
		return stream.Page{}, domain.NewUpstreamError(http.StatusServiceUnavailable, "circuit breaker open: "+err.Error())
	}
	return page, err
}

// State returns the current breaker state.
func (b *BreakerFetcher) State() gobreaker.State {
	return b.cb.State()
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
