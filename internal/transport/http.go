package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/Rafael-2109/frete-sistema-sub023/internal/analyzer"
	"github.com/Rafael-2109/frete-sistema-sub023/internal/models"
)

// maxBodyBytes bounds every request body.
const maxBodyBytes = 1 << 20

// Assistant is the set of operations exposed over HTTP.
type Assistant interface {
	TurnProcessor
	Analyze(query string) analyzer.QueryAnalysis
	Review(req *models.ReviewRequest) (*models.ReviewResponse, error)
	ClearSession(ctx context.Context, sessionID string) error
}

type httpHandler struct {
	assistant Assistant
	service   string
	logger    zerolog.Logger
}

// NewHTTPRouter builds the HTTP API.
func NewHTTPRouter(assistant Assistant, service string, requestTimeout time.Duration, logger zerolog.Logger) http.Handler {
	h := &httpHandler{
		assistant: assistant,
		service:   service,
		logger:    logger.With().Str("component", "http").Logger(),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(chimiddleware.Recoverer)
	if requestTimeout > 0 {
		r.Use(chimiddleware.Timeout(requestTimeout))
	}

	r.Get("/health", h.health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/chat", h.chat)
		r.Post("/analyze", h.analyze)
		r.Post("/review", h.review)
		r.Delete("/sessions/{sessionID}", h.clearSession)
	})

	return r
}

func (h *httpHandler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": h.service})
}

func (h *httpHandler) chat(w http.ResponseWriter, r *http.Request) {
	var req models.TurnRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.assistant.ProcessTurn(r.Context(), &req)
	if resp == nil {
		if err == nil {
			err = errors.New("empty response")
		}
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if resp.Status == models.StatusError {
		status = models.HTTPStatus(err)
	}
	writeJSON(w, status, resp)
}

func (h *httpHandler) analyze(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, fmt.Errorf("%w: query", models.ErrEmptyMessage))
		return
	}

	writeJSON(w, http.StatusOK, h.assistant.Analyze(req.Query))
}

func (h *httpHandler) review(w http.ResponseWriter, r *http.Request) {
	var req models.ReviewRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.assistant.Review(&req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *httpHandler) clearSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := h.assistant.ClearSession(r.Context(), sessionID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", models.ErrInvalidPayload, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, models.HTTPStatus(err), models.ErrorResponse{
		ErrorCode:    models.ErrorCode(err),
		ErrorMessage: err.Error(),
	})
}

// requestLogger logs one line per request with its status and latency.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info().
					Str("request_id", chimiddleware.GetReqID(r.Context())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("latency", time.Since(start)).
					Msg("request")
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// Serve runs srv until ctx is done, then shuts it down within grace.
func Serve(ctx context.Context, srv *http.Server, grace time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
