package chi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/giftwise/giftwise/internal/domain"
	logpkg "github.com/giftwise/giftwise/internal/logger"
	healthuc "github.com/giftwise/giftwise/internal/usecase/health"
	pipelineuc "github.com/giftwise/giftwise/internal/usecase/pipeline"
)

const maxMessageLen = 4000

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the conversation pipeline over HTTP.
type Server struct {
	pipeline      *pipelineuc.Service
	health        *healthuc.Service
	catalogURL    string
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. catalogURL is the base URL product
// links are resolved against.
func NewServer(
	pipeline *pipelineuc.Service,
	health *healthuc.Service,
	catalogURL string,
	logger *zap.Logger,
) *Server {
	s := &Server{
		pipeline:   pipeline,
		health:     health,
		catalogURL: catalogURL,
		logger:     logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInferenceProvider, http.StatusBadGateway, codeInferenceProvider),
		sentinelHandler(domain.ErrCatalogUnavailable, http.StatusBadGateway, codeCatalogUnavailable),
	}
	return s
}

// RegisterRoutes mounts all API routes on the router.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Post("/v1/chat", s.Chat)
	r.Post("/v1/chat/stream", s.ChatStream)
	r.Post("/v1/compare", s.Compare)
	r.Get("/healthz", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Chat handles POST /v1/chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeChatRequest(w, r)
	if !ok {
		return
	}

	res, err := s.pipeline.ProcessMessage(r.Context(), req.Message, req.history())
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		Message:  res.Message,
		Products: displayViews(res.Products, s.catalogURL),
		Intent:   intentInfo(res.Intent),
	})
}

// ChatStream handles POST /v1/chat/stream. The reply goes out as
// server-sent events: one products frame with the provisional display set,
// then a token frame per generated fragment, then a done frame.
func (s *Server) ChatStream(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeChatRequest(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, codeInternal, "streaming unsupported")
		return
	}

	res, err := s.pipeline.ProcessMessageStream(r.Context(), req.Message, req.history())
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}
	defer func() { _ = res.Stream.Close() }()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	writeEvent(w, "products", ChatResponse{
		Products: displayViews(res.Products, s.catalogURL),
		Intent:   intentInfo(res.Intent),
	})
	flusher.Flush()

	for {
		frag, err := res.Stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.requestLogger(r.Context()).Warn("Token stream interrupted", zap.Error(err))
			writeEvent(w, "error", ErrorResponse{
				Code:    codeInferenceProvider,
				Message: clientMessage(domain.ErrInferenceProvider),
			})
			flusher.Flush()
			return
		}
		writeEvent(w, "token", TokenEvent{Delta: frag})
		flusher.Flush()
	}

	writeEvent(w, "done", struct{}{})
	flusher.Flush()
}

// Compare handles POST /v1/compare. Conversation state lives client-side,
// so the request carries the candidate products alongside the selected IDs.
func (s *Server) Compare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	res, err := s.pipeline.CompareProducts(r.Context(), req.ProductIDs, req.Products, req.Context)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, CompareResponse{Message: res.Message})
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) decodeChatRequest(w http.ResponseWriter, r *http.Request) (ChatRequest, bool) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return ChatRequest{}, false
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Message is required")
		return ChatRequest{}, false
	}
	if len(req.Message) > maxMessageLen {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Message is too long")
		return ChatRequest{}, false
	}
	return req, true
}

// requestLogger prefers the request-scoped logger placed in the context by
// the middleware, so error lines carry the request ID.
func (s *Server) requestLogger(ctx context.Context) *zap.Logger {
	return logpkg.FromContext(ctx, s.logger)
}

func (s *Server) handleDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	log := s.requestLogger(ctx)
	log.Warn("domain error", zap.Error(err))
	msg := clientMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternal, clientMessage(nil))
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// clientMessage maps an internal failure to a short apologetic message.
// Internals never leak to the client; the detail goes to the log.
func clientMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrInferenceProvider):
		return "The assistant is temporarily unavailable. Please try again in a moment."
	case errors.Is(err, domain.ErrCatalogUnavailable):
		return "The product catalog is temporarily unavailable. Please try again in a moment."
	default:
		return "Something went wrong on our side. Please try again."
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeEvent(w http.ResponseWriter, event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = w.Write([]byte("event: " + event + "\ndata: " + string(data) + "\n\n"))
}

func displayViews(products []domain.Product, baseURL string) []domain.DisplayView {
	views := make([]domain.DisplayView, len(products))
	for i, p := range products {
		views[i] = p.ForDisplay(baseURL)
	}
	return views
}
