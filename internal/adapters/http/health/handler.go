package health

import (
	"log/slog"
	"net/http"

	apphealth "3tcapital/biohoneypot/internal/application/health"
	httpresp "3tcapital/biohoneypot/internal/infrastructure/http"
)

// Handler bridges HTTP traffic with the health application service.
type Handler struct {
	service *apphealth.Service
	log     *slog.Logger
}

func NewHandler(service *apphealth.Service, log *slog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	httpresp.WriteJSON(w, http.StatusOK, h.service.Status(r.Context()), h.log)
}
