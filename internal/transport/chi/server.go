package chi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/streamreel/internal/domain"
	"github.com/kailas-cloud/streamreel/internal/domain/query"
	"github.com/kailas-cloud/streamreel/internal/domain/stream"
	logpkg "github.com/kailas-cloud/streamreel/internal/logger"
	healthuc "github.com/kailas-cloud/streamreel/internal/usecase/health"
	streamsuc "github.com/kailas-cloud/streamreel/internal/usecase/streams"
)

// Wire messages the carousel widget relies on.
const (
	msgMissingGameID = "Missing required parameter: game_id"
	msgUpstreamError = "Twitch API error"
	msgInternalError = "internal error"
	msgRateLimited   = "rate limited"
)

// StreamsService serves filtered stream envelopes.
type StreamsService interface {
	Streams(ctx context.Context, q query.Query) ([]byte, streamsuc.Source, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Options holds request defaults applied by the handlers.
type Options struct {
	DefaultLimit int
	PageSize     int
}

// Server holds the HTTP handlers.
type Server struct {
	streams      StreamsService
	health       HealthChecker
	defaultLimit int
	pageSize     int
	logger       *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(streams StreamsService, health HealthChecker, opts Options, logger *zap.Logger) *Server {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = query.DefaultLimit
	}
	if opts.PageSize <= 0 {
		opts.PageSize = query.DefaultPageSize
	}
	return &Server{
		streams:      streams,
		health:       health,
		defaultLimit: opts.DefaultLimit,
		pageSize:     opts.PageSize,
		logger:       logger,
	}
}

// ListStreams handles GET /api/streams.
func (s *Server) ListStreams(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	q, err := query.New(
		params.Get("game_id"),
		query.ParseTerms(params.Get("keywords")),
		query.ParseTerms(params.Get("tags")),
		parseLimit(params["limit"], s.defaultLimit),
		s.pageSize,
	)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	ctx := logpkg.WithFields(r.Context(), zap.String("game_id", q.CategoryID()))
	body, src, err := s.streams.Streams(ctx, q)
	if err != nil {
		s.handleError(w, r.WithContext(ctx), err)
		return
	}

	w.Header().Set("X-Cache", string(src))
	writeBody(w, http.StatusOK, body)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: report.Checks,
	})
}

type healthResponse struct {
	Status string                          `json:"status"`
	Checks map[string]healthuc.CheckResult `json:"checks"`
}

func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context())

	if errors.Is(err, domain.ErrMissingCategory) {
		writeJSON(w, http.StatusBadRequest, stream.ErrorEnvelope{Error: msgMissingGameID})
		return
	}

	var upErr *domain.UpstreamError
	if errors.As(err, &upErr) {
		log.Warn("Upstream error", zap.Int("upstream_status", upErr.HTTPStatus), zap.Error(err))
		code := upErr.HTTPStatus
		writeJSON(w, http.StatusBadGateway, stream.ErrorEnvelope{
			Error:    msgUpstreamError,
			HTTPCode: &code,
			Detail:   upErr.Detail,
		})
		return
	}

	log.Error("internal error", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, stream.ErrorEnvelope{Error: msgInternalError})
}

// parseLimit reads the limit parameter the way the original widget expects:
// absent → def; otherwise the leading integer, coerced to at least 1 ("abc" → 1, "24px" → 24).
func parseLimit(values []string, def int) int {
	if len(values) == 0 {
		return def
	}
	n := leadingInt(values[0])
	if n < 1 {
		return 1
	}
	return n
}

func leadingInt(s string) int {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		// Overflow: saturate in the sign's direction.
		if s[0] == '-' {
			return 0
		}
		return int(^uint(0) >> 1)
	}
	return n
}
