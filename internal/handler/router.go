package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/tontinehub/tontine-admin-bfa/internal/domain"
	"github.com/tontinehub/tontine-admin-bfa/internal/infra/observability"
	"github.com/tontinehub/tontine-admin-bfa/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

const healthProbeTimeout = 2 * time.Second

// NewRouter creates the HTTP router with all routes and middleware.
// A nil authSvc leaves the admin routes unprotected and disables login.
func NewRouter(adminSvc *service.AdminService, authSvc *service.AuthService, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(adminSvc, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// Auth
		// =============================================
		r.Route("/auth", func(r chi.Router) {
			if authSvc == nil {
				r.Handle("/*", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					writeError(w, http.StatusServiceUnavailable, "authentication is disabled")
				}))
				return
			}
			r.Post("/login", authLoginHandler(authSvc, logger))
		})

		// =============================================
		// Admin back office
		// =============================================
		r.Route("/admin", func(r chi.Router) {
			if authSvc != nil {
				r.Use(JWTAuthMiddleware(authSvc, logger))
			}
			if adminSvc == nil {
				r.Handle("/*", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					writeError(w, http.StatusServiceUnavailable, "admin service unavailable")
				}))
				return
			}

			r.Get("/overview", overviewHandler(adminSvc, logger))
			r.Get("/metrics", adminMetricsHandler(metrics))

			// Members
			r.Get("/users", listUsersHandler(adminSvc, logger))
			r.Post("/users/{userId}/beneficiary", toggleBeneficiaryHandler(adminSvc, logger))
			r.Post("/users/{userId}/messages", sendMessageHandler(adminSvc, logger))

			// Groups & membership
			r.Get("/groups", listGroupsHandler(adminSvc, logger))
			r.Post("/groups", createGroupHandler(adminSvc, logger))
			r.Put("/groups/{groupId}", updateGroupHandler(adminSvc, logger))
			r.Delete("/groups/{groupId}", deleteGroupHandler(adminSvc, logger))
			r.Get("/groups/{groupId}/candidates", memberCandidatesHandler(adminSvc, logger))
			r.Post("/groups/{groupId}/members", addMemberHandler(adminSvc, logger))
			r.Delete("/groups/{groupId}/members/{userId}", removeMemberHandler(adminSvc, logger))

			// Ledger
			r.Get("/transactions", listTransactionsHandler(adminSvc, logger))
			r.Get("/transactions/recent", recentTransactionsHandler(adminSvc, logger))
			r.Post("/deposits", makeDepositHandler(adminSvc, logger))

			// Contributions
			r.Get("/contributions", contributionsHandler(adminSvc, logger))
			r.Get("/contributions/daily", dailyContributionsHandler(adminSvc, logger))
			r.Get("/contributions/missed", missedContributionsHandler(adminSvc, logger))
		})
	})

	return r
}

// ============================================================
// Operational
// ============================================================

func healthzHandler(adminSvc *service.AdminService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "tontine-admin-bfa", Status: "healthy", LastChecked: now},
		}

		if adminSvc != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
			defer cancel()

			latency, err := adminSvc.PingStore(ctx)
			status := "healthy"
			if err != nil {
				logger.Warn("health: data collaborator degraded", zap.Error(err))
				status = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name:        "data-store",
				Status:      status,
				LatencyMs:   latency.Milliseconds(),
				LastChecked: now,
			})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func adminMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.Snapshot())
	}
}
