package site

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	httpresp "3tcapital/biohoneypot/internal/infrastructure/http"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// User is an entry of the fake staff directory.
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	LastLogin string `json:"last_login"`
}

var staff = []User{
	{ID: 1, Username: "admin", Role: "administrator", LastLogin: "2023-10-15"},
	{ID: 2, Username: "researcher1", Role: "researcher", LastLogin: "2023-10-14"},
	{ID: 3, Username: "labtech", Role: "technician", LastLogin: "2023-10-13"},
}

type pageData struct {
	Institute string
	Version   string
}

// Handler serves the static lure pages.
type Handler struct {
	log  *slog.Logger
	data pageData
}

// NewHandler builds the site handler. version is shown on the admin banner.
func NewHandler(log *slog.Logger, version string) *Handler {
	return &Handler{
		log: log,
		data: pageData{
			Institute: "Advanced Biological Research Institute",
			Version:   version,
		},
	}
}

// Routes registers the landing page and the admin lure on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.Home)
	r.Get("/admin", h.Admin)
	r.Get("/admin/users", h.Users)
}

func (h *Handler) Home(w http.ResponseWriter, _ *http.Request) {
	h.render(w, "index.html")
}

func (h *Handler) Admin(w http.ResponseWriter, _ *http.Request) {
	h.render(w, "admin.html")
}

func (h *Handler) Users(w http.ResponseWriter, _ *http.Request) {
	httpresp.WriteJSON(w, http.StatusOK, staff, h.log)
}

// render executes into a buffer first so a template failure still yields a
// 200 response.
func (h *Handler) render(w http.ResponseWriter, name string) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, h.data); err != nil {
		h.log.Error("failed to render page", "template", name, "error", err)
		httpresp.WriteFallback(w, h.log)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
