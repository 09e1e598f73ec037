package decoy

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	appdecoy "3tcapital/biohoneypot/internal/application/decoy"
	httpresp "3tcapital/biohoneypot/internal/infrastructure/http"
)

const defaultMaxBody = 1 << 20

// Handler serves the fabricated research API. Every route answers 200.
type Handler struct {
	log       *slog.Logger
	newSource func() appdecoy.Source
	now       func() time.Time
	maxBody   int64
}

// NewHandler builds the decoy handler. maxBody bounds how much of a command
// or login body is read; values <= 0 use 1 MiB.
func NewHandler(log *slog.Logger, maxBody int) *Handler {
	if maxBody <= 0 {
		maxBody = defaultMaxBody
	}
	return &Handler{
		log:       log,
		newSource: appdecoy.NewSource,
		now:       time.Now,
		maxBody:   int64(maxBody),
	}
}

// Routes registers the decoy endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/api/sequences/{id}", h.GetSequence)
	r.Post("/api/sequences", h.UploadSequence)
	r.Get("/api/equipment/{id}/status", h.EquipmentStatus)
	r.Post("/api/equipment/{id}/control", h.ControlEquipment)
	r.Get("/api/experiments", h.ListExperiments)
	r.Get("/api/experiments/{id}/data", h.ExperimentData)
	r.Post("/api/auth/login", h.Login)
}

func (h *Handler) GetSequence(w http.ResponseWriter, r *http.Request) {
	h.write(w, appdecoy.Sequence(h.newSource(), pathParam(r, "id")))
}

func (h *Handler) UploadSequence(w http.ResponseWriter, _ *http.Request) {
	h.write(w, appdecoy.Upload(h.newSource()))
}

func (h *Handler) EquipmentStatus(w http.ResponseWriter, r *http.Request) {
	h.write(w, appdecoy.EquipmentStatus(h.newSource(), pathParam(r, "id"), h.now()))
}

func (h *Handler) ControlEquipment(w http.ResponseWriter, r *http.Request) {
	h.write(w, appdecoy.ControlEquipment(pathParam(r, "id"), h.readBody(r)))
}

func (h *Handler) ListExperiments(w http.ResponseWriter, _ *http.Request) {
	h.write(w, appdecoy.Experiments(h.newSource(), h.now()))
}

func (h *Handler) ExperimentData(w http.ResponseWriter, r *http.Request) {
	h.write(w, appdecoy.ExperimentData(h.newSource(), pathParam(r, "id")))
}

// Login accepts any credentials. The username is taken from a JSON object
// body when it is a string.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username any `json:"username"`
	}
	var username string
	if err := json.Unmarshal(h.readBody(r), &creds); err == nil {
		username, _ = creds.Username.(string)
	}
	h.write(w, appdecoy.Login(h.newSource(), username))
}

// pathParam returns the percent-decoded route parameter. chi matches on the
// raw path, so "a%2Fb" arrives encoded. Undecodable values are echoed as sent.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// readBody returns up to maxBody bytes of the request body. Read errors
// yield whatever was read.
func (h *Handler) readBody(r *http.Request) []byte {
	if r.Body == nil {
		return nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, h.maxBody))
	if err != nil {
		h.log.Debug("decoy body read failed", "error", err)
	}
	return body
}

func (h *Handler) write(w http.ResponseWriter, payload any) {
	httpresp.WriteJSON(w, http.StatusOK, payload, h.log)
}
