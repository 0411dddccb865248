// Package httpadapter is the inbound HTTP adapter. It decodes requests into
// port inputs, resolves the caller from the bearer token and maps apperr
// kinds to status codes.
package httpadapter

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"sponsorhub/internal/config/configs"
	"sponsorhub/internal/core/port"
)

// Services bundles the use cases served over HTTP.
type Services struct {
	Sponsors  port.SponsorUseCase
	Slots     port.SlotUseCase
	Campaigns port.CampaignUseCase
	Analytics port.AnalyticsUseCase
	Billing   port.BillingUseCase
}

// Pinger reports storage health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler contains dependencies and routes. Routes are registered on a
// chi.Router; everything under /api/v1 and /ws requires a principal.
type Handler struct {
	svc    Services
	db     Pinger
	auth   *Authenticator
	logger *slog.Logger
	router chi.Router
}

// NewHandler creates a handler with all routes configured. live serves the
// websocket endpoint and may be nil.
func NewHandler(svc Services, db Pinger, auth *Authenticator, live http.Handler, events configs.Events, logger *slog.Logger) *Handler {
	h := &Handler{svc: svc, db: db, auth: auth, logger: logger}
	ingest := rate.NewLimiter(rate.Limit(events.Rate), events.Burst)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer, instrument)

	r.Get("/health", h.handleHealth)
	r.Get("/health/db", h.handleHealthDB)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware)
		if live != nil {
			r.Method(http.MethodGet, "/ws", live)
		}

		r.Route("/api/v1", func(r chi.Router) {
			r.Route("/sponsors", func(r chi.Router) {
				r.Get("/", h.handleListSponsors)
				r.Post("/", h.handleCreateSponsor)
				r.Get("/{id}", h.handleGetSponsor)
				r.Patch("/{id}", h.handleUpdateSponsor)
				r.Delete("/{id}", h.handleDeleteSponsor)
			})
			r.Route("/adslots", func(r chi.Router) {
				r.Get("/", h.handleListSlots)
				r.Post("/", h.handleCreateSlot)
				r.Get("/{id}", h.handleGetSlot)
				r.Patch("/{id}", h.handleUpdateSlot)
				r.Delete("/{id}", h.handleDeleteSlot)
			})
			r.Route("/campaigns", func(r chi.Router) {
				r.Get("/", h.handleListCampaigns)
				r.Post("/", h.handleCreateCampaign)
				r.Get("/{id}", h.handleGetCampaign)
				r.Patch("/{id}", h.handleUpdateCampaign)
				r.Delete("/{id}", h.handleDeleteCampaign)
				r.Post("/{id}/refresh", h.handleRefreshCampaign)
				r.Post("/{id}/{action}", h.handleCampaignAction)
			})
			r.Route("/events", func(r chi.Router) {
				r.Use(h.limit(ingest))
				r.Post("/", h.handleRecordEvent)
				r.Post("/bulk", h.handleRecordEvents)
			})
			r.Route("/analytics", func(r chi.Router) {
				r.Get("/", h.handleAnalyticsSummary)
				r.Get("/report", h.handleAnalyticsReport)
				r.Get("/export", h.handleAnalyticsExport)
			})
			r.Route("/invoices", func(r chi.Router) {
				r.Get("/", h.handleListInvoices)
				r.Post("/", h.handleCreateInvoice)
				r.Get("/{id}", h.handleGetInvoice)
				r.Patch("/{id}/pay", h.handlePayInvoice)
				r.Patch("/{id}/send", h.handleSendInvoice)
			})
		})
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleHealthDB(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		h.logger.Warn("database health check failed", slog.Any("error", err))
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
