// Package api serves the JSON query endpoint, the health endpoints and a small
// static page that calls them from the browser.
package api

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lewisedginton/adk_webui/internal/query"
	"github.com/lewisedginton/adk_webui/pkg/health"
	"github.com/lewisedginton/adk_webui/pkg/httpmiddleware"
	"github.com/lewisedginton/adk_webui/pkg/logger"
)

//go:embed static
var staticFiles embed.FS

// IndexPath is where GET / redirects to.
const IndexPath = "/static/index.html"

// Answerer is the query capability the API serves.
type Answerer interface {
	Answer(ctx context.Context, prompt string) (query.Response, error)
	Health() query.HealthStatus
}

// Config wires the router's collaborators.
type Config struct {
	Service Answerer
	// Health adds /health/live and /health/ready when set.
	Health     *health.HealthChecker
	Middleware httpmiddleware.Config
	Logger     logger.Logger
}

// Request is the body of POST /query.
type Request struct {
	Prompt *string `json:"prompt"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

type handler struct {
	svc Answerer
	log logger.Logger
}

// NewRouter builds the API router.
func NewRouter(cfg Config) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	h := &handler{svc: cfg.Service, log: log.WithFields(logger.StringField("component", "api"))}

	r := chi.NewRouter()
	httpmiddleware.ApplyToRouter(r, cfg.Middleware)

	r.Post("/query", h.query)
	r.Get("/health", h.health)
	if cfg.Health != nil {
		r.Get("/health/live", cfg.Health.LivenessHandler())
		r.Get("/health/ready", cfg.Health.ReadinessHandler())
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, IndexPath, http.StatusTemporaryRedirect)
	})
	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	return r
}

func (h *handler) query(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLoggerFromContext(r.Context(), h.log)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Detail: "request body too large"})
		case errors.Is(err, io.EOF):
			writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Detail: "request body is required"})
		default:
			writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Detail: "invalid request body: " + err.Error()})
		}
		return
	}
	if req.Prompt == nil {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Detail: "field required: prompt"})
		return
	}

	resp, err := h.svc.Answer(r.Context(), *req.Prompt)
	if err != nil {
		log.Error("Query failed", logger.ErrorField(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Detail: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Health())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
