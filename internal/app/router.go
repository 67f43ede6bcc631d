// Package app assembles the HTTP router from config and the wired ports.
package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"job-assistant/internal/adapter/httpserver"
	"job-assistant/internal/config"
	"job-assistant/internal/observability"
	"job-assistant/internal/usecase"
)

const serviceName = "job-assistant"

// NewRouter builds the full route tree with the ambient middleware stack.
func NewRouter(cfg config.Config, svc *usecase.Assistant) http.Handler {
	h := httpserver.NewHandler(svc, cfg.MaxUploadMB<<20)

	r := chi.NewRouter()
	r.Use(httpserver.RequestID)
	r.Use(httpserver.Recoverer)
	r.Use(httpserver.SecurityHeaders)
	r.Use(httpserver.AccessLog)
	r.Use(observability.HTTPMetricsMiddleware)
	r.Use(middleware.Timeout(cfg.HTTPWriteTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSAllowOrigins, ","),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/", statusHandler(cfg))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(v1 chi.Router) {
		v1.Group(func(mut chi.Router) {
			if cfg.RateLimitPerMin > 0 {
				mut.Use(httprate.LimitByIP(cfg.RateLimitPerMin, time.Minute))
			}
			mut.Post("/resume", h.SubmitResume)
			mut.Post("/job", h.SubmitJob)
			mut.Post("/match", h.RequestMatch)
			mut.Post("/question", h.Question)
			mut.Post("/resume/personal", h.SavePersonalResume)
			mut.Delete("/session/{session_id}", h.DeleteSession)
		})

		v1.Get("/resume/personal", h.LoadPersonalResume)
		v1.Get("/resume/{session_id}", h.GetResume)
		v1.Get("/job/{session_id}", h.GetJob)
		v1.Get("/match/{session_id}", h.GetMatch)
		v1.Get("/questions/{session_id}", h.SuggestedQuestions)
	})

	return r
}

func statusHandler(cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"service":"` + serviceName + `","version":"` + cfg.Version + `","status":"running"}`))
	}
}
