package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/WilderMartins/GRC-sub003/pkg/usecase"
	"github.com/WilderMartins/GRC-sub003/pkg/utils/logging"
	"github.com/WilderMartins/GRC-sub003/pkg/utils/metrics"
)

type Server struct {
	router        *chi.Mux
	uc            *usecase.UseCases
	authn         Authenticator
	validate      *validator.Validate
	enableMetrics bool
}

type Options func(*Server)

// WithAuthenticator sets how callers are identified. Without it every
// protected request is rejected.
func WithAuthenticator(a Authenticator) Options {
	return func(s *Server) {
		s.authn = a
	}
}

// WithMetrics exposes the Prometheus registry on /metrics
func WithMetrics(enabled bool) Options {
	return func(s *Server) {
		s.enableMetrics = enabled
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:   r,
		uc:       uc,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)
	if s.enableMetrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/risks", func(r chi.Router) {
		r.Use(authMiddleware(s.authn))

		r.Post("/", s.createRisk)
		r.Get("/", s.listRisks)
		r.Route("/{riskId}", func(r chi.Router) {
			r.Get("/", s.getRisk)
			r.Put("/", s.updateRisk)
			r.Post("/submit-acceptance", s.submitAcceptance)
			r.Post("/approval/{approvalId}/decide", s.decideApproval)
			r.Get("/approval-history", s.approvalHistory)
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests and records their latency
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		ctx := logging.With(r.Context(), logging.From(r.Context()).With(
			"request_id", middleware.GetReqID(r.Context()),
		))
		r = r.WithContext(ctx)

		defer func() {
			elapsed := time.Since(start)
			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			metrics.ObserveHTTP(r.Method, route, strconv.Itoa(ww.Status()), elapsed.Seconds())

			logging.From(ctx).Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", elapsed,
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}
