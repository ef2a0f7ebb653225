package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gemmad/internal/manager"
	"gemmad/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Health() types.HealthResponse
	Generate(ctx context.Context, req types.GenerateRequest) (types.GenerateResponse, error)
	Status() types.StatusResponse
	Ready() bool
}

// NewMux builds the router for svc.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(middleware.Compress(5))
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			ExposedHeaders: []string{"X-Request-Id"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", handleHealth(svc))
	r.Post("/generate", handleGenerate(svc))
	r.Get("/status", handleStatus(svc))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("loading"))
	})

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	MountSwagger(r)
	return r
}

// handleHealth reports whether the model is loaded.
//
//	@Summary		Model health
//	@Description	Always 200; status is "error" until the model has loaded.
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	types.HealthResponse
//	@Router			/health [get]
func handleHealth(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.Health())
	}
}

// handleStatus returns load and admission state.
//
//	@Summary	Service status
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	types.StatusResponse
//	@Router		/status [get]
func handleStatus(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.Status())
	}
}

// handleGenerate runs one generation.
//
//	@Summary		Generate text
//	@Description	Wraps text in the system persona and returns the model reply.
//	@Tags			generate
//	@Accept			json
//	@Produce		json
//	@Param			request	body		types.GenerateRequest	true	"prompt"
//	@Success		200		{object}	types.GenerateResponse
//	@Failure		400		{object}	types.ErrorResponse
//	@Failure		415		{object}	types.ErrorResponse
//	@Failure		429		{object}	types.ErrorResponse
//	@Failure		500		{object}	types.ErrorResponse
//	@Failure		502		{object}	types.ErrorResponse
//	@Failure		503		{object}	types.ErrorResponse
//	@Failure		504		{object}	types.ErrorResponse
//	@Router			/generate [post]
func handleGenerate(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			// Oversized bodies also land here; 400 avoids leaking the limit.
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		lvl := requestLogLevel(r)
		start := time.Now()
		if lvl >= LevelDebug {
			ev := zlog.Debug().Int("text_len", len(req.Text)).Int("max_tokens", req.MaxTokens).Int("images", len(req.Images))
			if rid := middleware.GetReqID(r.Context()); rid != "" {
				ev = ev.Str("request_id", rid)
			}
			ev.Msg("generate start")
		}

		// Shutdown cancels in-flight work too.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		if generateTimeout > 0 {
			var tcancel context.CancelFunc
			ctx, tcancel = context.WithTimeout(ctx, generateTimeout)
			defer tcancel()
		}

		resp, err := svc.Generate(ctx, req)
		if err != nil {
			// Client went away; nothing to write.
			if r.Context().Err() != nil {
				return
			}
			if serverBaseCtx.Err() != nil {
				writeJSONError(w, http.StatusServiceUnavailable, "server shutting down")
				logGenerate(r, lvl, start, http.StatusServiceUnavailable, err)
				return
			}
			status, msg := errorStatus(err)
			if status == http.StatusTooManyRequests {
				IncrementBackpressure(manager.TooBusyReason(err))
			}
			writeJSONError(w, status, msg)
			logGenerate(r, lvl, start, status, err)
			return
		}
		writeJSON(w, resp)
		logGenerate(r, lvl, start, http.StatusOK, nil)
	}
}
