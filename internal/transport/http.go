package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/roach88/navegante/internal/dispatch"
)

const maxBodyBytes = 1 << 20

// RequestIDHeader carries the caller's correlation id.
const RequestIDHeader = "X-Request-Id"

// HealthFunc reports whether the backend can serve requests.
type HealthFunc func(ctx context.Context) error

// Instrumenter wraps handlers with HTTP metrics and exposes them.
type Instrumenter interface {
	InstrumentHandler(next http.Handler) http.Handler
	Handler() http.Handler
}

// HTTPOptions configures the HTTP router.
type HTTPOptions struct {
	Health  HealthFunc
	Metrics Instrumenter
	Logger  *slog.Logger
}

// NewRouter builds the HTTP API around h.
//
//	POST /v1/ops/{op}   body = operation arguments
//	GET  /v1/ops        list of operation names
//	GET  /healthz
//	GET  /metrics       when Metrics is set
func NewRouter(h *Handler, opts HTTPOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.InstrumentHandler)
	}
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			req.Body = http.MaxBytesReader(w, req.Body, maxBodyBytes)
			next.ServeHTTP(w, req)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if opts.Health != nil {
			if err := opts.Health(req.Context()); err != nil {
				logger.Error("health check failed", "error", err)
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Route("/v1/ops", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, Response{
				ID:     json.RawMessage("null"),
				Status: "ok",
				Data:   dispatch.Operations(),
			})
		})
		r.Post("/{op}", func(w http.ResponseWriter, req *http.Request) {
			var id json.RawMessage
			if v := req.Header.Get(RequestIDHeader); v != "" {
				id, _ = json.Marshal(v)
			}

			body, err := io.ReadAll(req.Body)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, badRequest(id, fmt.Sprintf("read body: %v", err)))
				return
			}

			resp := h.Handle(req.Context(), Request{ID: id, Op: chi.URLParam(req, "op"), Args: body})
			writeJSON(w, statusFor(resp), resp)
		})
	})

	return r
}

// statusFor maps the failure code onto an HTTP status.
func statusFor(resp Response) int {
	if resp.Error == nil {
		return http.StatusOK
	}
	switch dispatch.Code(resp.Error.Code) {
	case dispatch.CodeValidation:
		return http.StatusUnprocessableEntity
	case dispatch.CodeInUse:
		return http.StatusConflict
	case dispatch.CodeUnknownOperation:
		return http.StatusNotFound
	case dispatch.CodeBadRequest:
		return http.StatusBadRequest
	case dispatch.CodeRemote:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ListenAndServe serves handler on addr until ctx is canceled, then shuts
// down gracefully.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http transport listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http transport: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		logger.Info("http transport stopped")
		return nil
	}
}
