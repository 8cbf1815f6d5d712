// Package chi serves the ops and admin HTTP surface of the engine.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/matchdex/internal/domain"
	domslate "github.com/kailas-cloud/matchdex/internal/domain/slate"
	"github.com/kailas-cloud/matchdex/internal/logger"
	"github.com/kailas-cloud/matchdex/internal/metrics"
	healthuc "github.com/kailas-cloud/matchdex/internal/usecase/health"
	passuc "github.com/kailas-cloud/matchdex/internal/usecase/pass"
	usageuc "github.com/kailas-cloud/matchdex/internal/usecase/usage"
)

const (
	maxSearchK        = 100
	maxMessagesPerReq = 20
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest   = "bad_request"
	CodeUnauthorized = "unauthorized"
	CodeNotFound     = "not_found"
	CodeUnavailable  = "unavailable"
	CodeUpstream     = "embedding_provider_error"
	CodeQuota        = "embedding_quota_exceeded"
	CodeInternal     = "internal_error"
)

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
	Ready(ctx context.Context) bool
}

// PassRunner runs curation passes on demand.
type PassRunner interface {
	Run(ctx context.Context) (passuc.Report, error)
	Reconsolidate(ctx context.Context, clientID string) (domslate.Slate, error)
}

// SlateReader returns stored slates.
type SlateReader interface {
	Get(ctx context.Context, clientID string) (domslate.Slate, error)
}

// Searcher answers natural-language client searches.
type Searcher interface {
	SemanticSearch(ctx context.Context, text string, k int) ([]string, error)
}

// MessageLog records client conversation messages for profile composition.
type MessageLog interface {
	AppendMessage(ctx context.Context, clientID string, msgs ...string) error
}

// UsageReporter reports embedding token usage.
type UsageReporter interface {
	GetReport(ctx context.Context, period usageuc.Period) usageuc.Report
}

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SlateEntry is one ranked recommendation.
type SlateEntry struct {
	CandidateID string   `json:"candidate_id"`
	Score       int      `json:"score"`
	Reasons     []string `json:"reasons"`
}

// SlateResponse is a client's stored slate.
type SlateResponse struct {
	ClientID        string       `json:"client_id"`
	Cap             int          `json:"cap"`
	TotalConsidered int          `json:"total_considered"`
	Entries         []SlateEntry `json:"entries"`
}

// SearchRequest is the body of POST /v1/search.
type SearchRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

// MessagesRequest is the body of POST /v1/clients/{clientID}/messages.
type MessagesRequest struct {
	Messages []string `json:"messages"`
}

// SearchResponse lists matching client ids, most similar first.
type SearchResponse struct {
	ClientIDs []string `json:"client_ids"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server wires use cases to HTTP handlers.
type Server struct {
	health        HealthChecker
	passes        PassRunner
	slates        SlateReader
	search        Searcher
	usage         UsageReporter
	messages      MessageLog
	defaultK      int
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates the HTTP server. Any use case but health may be nil,
// which leaves its routes unmounted.
func NewServer(
	health HealthChecker, passes PassRunner, slates SlateReader, search Searcher,
	defaultK int, logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultK <= 0 {
		defaultK = 10
	}
	return &Server{
		health:   health,
		passes:   passes,
		slates:   slates,
		search:   search,
		defaultK: defaultK,
		logger:   logger,
		errorHandlers: []errorHandler{
			sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
			sentinelHandler(domain.ErrIndexUnavailable, http.StatusServiceUnavailable, CodeUnavailable),
			sentinelHandler(domain.ErrEmbeddingQuotaExceeded, http.StatusPaymentRequired, CodeQuota),
			sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeUpstream),
			sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadGateway, CodeUpstream),
			sentinelHandler(domain.ErrCollaborator, http.StatusBadGateway, CodeUpstream),
		},
	}
}

// WithUsage mounts GET /v1/usage.
func (s *Server) WithUsage(u UsageReporter) *Server {
	s.usage = u
	return s
}

// WithMessages mounts POST /v1/clients/{clientID}/messages.
func (s *Server) WithMessages(m MessageLog) *Server {
	s.messages = m
	return s
}

// Router builds the chi router. apiKeys protect /v1; empty disables auth.
func (s *Server) Router(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(metrics.Middleware("/metrics"))

	r.Get("/healthz", s.Health)
	r.Get("/readyz", s.Ready)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiKeys))
		if s.passes != nil {
			r.Post("/passes", s.RunPass)
			r.Post("/clients/{clientID}/slate/consolidate", s.Consolidate)
		}
		if s.slates != nil {
			r.Get("/clients/{clientID}/slate", s.GetSlate)
		}
		if s.search != nil {
			r.Post("/search", s.Search)
		}
		if s.usage != nil {
			r.Get("/usage", s.Usage)
		}
		if s.messages != nil {
			r.Post("/clients/{clientID}/messages", s.AppendMessages)
		}
	})
	return r
}

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())
	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// Ready handles GET /readyz.
func (s *Server) Ready(w http.ResponseWriter, r *http.Request) {
	if !s.health.Ready(r.Context()) {
		writeError(w, http.StatusServiceUnavailable, CodeUnavailable, "not ready")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// RunPass handles POST /v1/passes.
func (s *Server) RunPass(w http.ResponseWriter, r *http.Request) {
	report, err := s.passes.Run(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Consolidate handles POST /v1/clients/{clientID}/slate/consolidate.
func (s *Server) Consolidate(w http.ResponseWriter, r *http.Request) {
	sl, err := s.passes.Reconsolidate(r.Context(), chi.URLParam(r, "clientID"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, slateToResponse(sl))
}

// GetSlate handles GET /v1/clients/{clientID}/slate.
func (s *Server) GetSlate(w http.ResponseWriter, r *http.Request) {
	sl, err := s.slates.Get(r.Context(), chi.URLParam(r, "clientID"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, slateToResponse(sl))
}

// Search handles POST /v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "query is required")
		return
	}
	if req.K == 0 {
		req.K = s.defaultK
	}
	if req.K < 0 || req.K > maxSearchK {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "k must be between 1 and 100")
		return
	}

	ids, err := s.search.SemanticSearch(r.Context(), req.Query, req.K)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{ClientIDs: ids})
}

// AppendMessages handles POST /v1/clients/{clientID}/messages. Blank
// messages are dropped; the next profile refresh picks the rest up.
func (s *Server) AppendMessages(w http.ResponseWriter, r *http.Request) {
	var req MessagesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	msgs := make([]string, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m = strings.TrimSpace(m); m != "" {
			msgs = append(msgs, m)
		}
	}
	if len(msgs) == 0 {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "at least one non-empty message is required")
		return
	}
	if len(msgs) > maxMessagesPerReq {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "at most 20 messages per request")
		return
	}

	if err := s.messages.AppendMessage(r.Context(), chi.URLParam(r, "clientID"), msgs...); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Usage handles GET /v1/usage?period=day|month.
func (s *Server) Usage(w http.ResponseWriter, r *http.Request) {
	period, err := usageuc.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.usage.GetReport(r.Context(), period))
}

func slateToResponse(sl domslate.Slate) SlateResponse {
	entries := sl.Entries()
	resp := SlateResponse{
		ClientID:        sl.ClientID(),
		Cap:             sl.Cap(),
		TotalConsidered: sl.TotalConsidered(),
		Entries:         make([]SlateEntry, len(entries)),
	}
	for i, e := range entries {
		resp.Entries[i] = SlateEntry{CandidateID: e.CandidateID(), Score: e.Score(), Reasons: e.Reasons()}
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context(), s.logger)
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternal, "internal error")
}
