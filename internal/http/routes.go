package httpx

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/target/competitions-api/internal/core"
	"github.com/target/competitions-api/internal/observability/metrics"
	"github.com/target/competitions-api/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Organizers    *service.OrganizerService
	Events        *service.EventService
	Registrations *service.RegistrationService
	Jobs          *service.JobService
	Outbox        core.OutboxRepository

	// ReadinessChecks are pinged by GET /healthz, keyed by dependency name.
	ReadinessChecks map[string]Pinger

	// Optional: when Gatherer is set /metrics is served from it.
	Gatherer prometheus.Gatherer
	Metrics  *metrics.Recorder

	CORSAllowedOrigins []string
	Logger             *slog.Logger
}

// NewRouter creates the HTTP handler with its middleware stack.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	registerHealthRoutes(mux, services, logger)
	registerOrganizerRoutes(mux, NewOrganizerHandlers(services.Organizers, logger))
	registerEventRoutes(mux,
		NewEventHandlers(services.Events, logger),
		NewRegistrationHandlers(services.Registrations, logger),
	)
	registerJobRoutes(mux, NewJobHandlers(services.Jobs, logger))
	if services.Outbox != nil {
		mux.HandleFunc("GET /outbox", NewOutboxHandlers(services.Outbox, logger).List)
	}
	if services.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(services.Gatherer, promhttp.HandlerOpts{}))
	}

	return Chain(mux,
		Recover(logger),
		Logging(logger),
		Metrics(services.Metrics),
		CORS(services.CORSAllowedOrigins),
	)
}

func registerHealthRoutes(mux *http.ServeMux, services RouterServices, logger *slog.Logger) {
	mux.HandleFunc("GET /{$}", rootHandler)
	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("HEAD /health", healthHandler)
	mux.Handle("GET /healthz", &ReadinessHandler{Checks: services.ReadinessChecks, Logger: logger})
}

func registerOrganizerRoutes(mux *http.ServeMux, h *OrganizerHandlers) {
	mux.HandleFunc("POST /organizers", h.Create)
	mux.HandleFunc("GET /organizers", h.List)
}

func registerEventRoutes(mux *http.ServeMux, events *EventHandlers, regs *RegistrationHandlers) {
	mux.HandleFunc("POST /events", events.Create)
	mux.HandleFunc("GET /events", events.List)
	mux.HandleFunc("GET /events/{id}", events.Get)
	mux.HandleFunc("POST /events/{id}/register", regs.Register)
	mux.HandleFunc("GET /events/{id}/registrations", regs.List)
}

func registerJobRoutes(mux *http.ServeMux, h *JobHandlers) {
	mux.HandleFunc("POST /jobs", h.CreateJob)
	mux.HandleFunc("GET /jobs", h.ListJobs)
	mux.HandleFunc("GET /jobs/stats", h.Stats)
	mux.HandleFunc("GET /jobs/{id}", h.GetJob)
}
