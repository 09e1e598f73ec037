package monitoring

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	appmonitoring "3tcapital/biohoneypot/internal/application/monitoring"
	"3tcapital/biohoneypot/internal/core/interaction"
	httpresp "3tcapital/biohoneypot/internal/infrastructure/http"
)

// Handler exposes the captured interactions to the operator.
type Handler struct {
	service *appmonitoring.Service
	log     *slog.Logger
}

func NewHandler(service *appmonitoring.Service, log *slog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Routes registers the monitoring endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/api/honeypot/interactions", h.Interactions)
	r.Get("/api/honeypot/stats", h.Stats)
}

// Interactions lists the most recent records, oldest first.
func (h *Handler) Interactions(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.Recent(r.Context())
	if err != nil {
		h.log.Error("failed to list interactions", "error", err)
	}
	if records == nil {
		records = []interaction.Record{}
	}
	httpresp.WriteJSON(w, http.StatusOK, records, h.log)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.log.Error("failed to compute interaction stats", "error", err)
		stats.MostAccessedEndpoints = map[string]int{}
	}
	httpresp.WriteJSON(w, http.StatusOK, stats, h.log)
}
