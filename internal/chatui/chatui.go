// Package chatui serves the interactive single-turn prompt page.
package chatui

import (
	"context"
	"embed"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lewisedginton/adk_webui/internal/query"
	"github.com/lewisedginton/adk_webui/pkg/httpmiddleware"
	"github.com/lewisedginton/adk_webui/pkg/logger"
)

//go:embed templates/*.html
var templateFiles embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFiles, "templates/index.html"))

// Answerer is the query capability the page uses.
type Answerer interface {
	Answer(ctx context.Context, prompt string) (query.Response, error)
}

// Config wires the page's collaborators.
type Config struct {
	Service     Answerer
	Title       string
	Description string
	Middleware  httpmiddleware.Config
	// MaxMessageBytes bounds inbound websocket messages. Zero means 1 MiB.
	MaxMessageBytes int64
	Logger          logger.Logger
}

type pageData struct {
	Title       string
	Description string
	Prompt      string
	Response    string
	Error       string
	SearchUsed  bool
}

type handler struct {
	svc         Answerer
	title       string
	description string
	maxMessage  int64
	log         logger.Logger
}

// NewRouter builds the chat page router. The websocket route runs without the
// request timeout and compression middleware.
func NewRouter(cfg Config) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	maxMessage := cfg.MaxMessageBytes
	if maxMessage <= 0 {
		maxMessage = 1 << 20
	}
	h := &handler{
		svc:         cfg.Service,
		title:       cfg.Title,
		description: cfg.Description,
		maxMessage:  maxMessage,
		log:         log.WithFields(logger.StringField("component", "chatui")),
	}

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		httpmiddleware.ApplyToRouter(r, cfg.Middleware)
		r.Get("/", h.index)
		r.Post("/ask", h.ask)
	})
	r.Group(func(r chi.Router) {
		httpmiddleware.ApplyToRouter(r, cfg.Middleware.Streaming())
		r.Get("/ws", h.serveWebsocket)
	})
	return r
}

func (h *handler) index(w http.ResponseWriter, _ *http.Request) {
	h.render(w, http.StatusOK, h.page())
}

func (h *handler) ask(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		data := h.page()
		data.Error = "Could not read the submitted form."
		h.render(w, http.StatusBadRequest, data)
		return
	}

	data := h.page()
	data.Prompt = r.PostForm.Get("prompt")

	resp, err := h.svc.Answer(r.Context(), data.Prompt)
	if err != nil {
		logger.GetLoggerFromContext(r.Context(), h.log).Error("Prompt failed", logger.ErrorField(err))
		data.Error = "Error: " + err.Error()
		h.render(w, http.StatusOK, data)
		return
	}
	data.Response = resp.Text
	data.SearchUsed = resp.SearchUsed
	h.render(w, http.StatusOK, data)
}

func (h *handler) page() pageData {
	return pageData{Title: h.title, Description: h.description}
}

func (h *handler) render(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		h.log.Error("Failed to render page", logger.ErrorField(err))
	}
}
