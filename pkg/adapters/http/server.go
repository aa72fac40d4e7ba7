package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/blueprint"
	"github.com/aretw0/blueprint/pkg/domain"
	"github.com/aretw0/blueprint/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxBodyBytes bounds request bodies, snapshots included.
const maxBodyBytes = 4 << 20

// Server exposes an editing session over HTTP.
type Server struct {
	Editor  ports.Editor
	Streams *StreamManager

	spec    *apiSpec
	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsHandler mounts h under GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewHandler creates a new HTTP handler for the editor.
// Canvas changes are pushed to SSE subscribers as diffs.
func NewHandler(editor ports.Editor, opts ...Option) (http.Handler, error) {
	spec, err := loadSpec()
	if err != nil {
		return nil, err
	}

	server := &Server{
		Editor:  editor,
		Streams: NewStreamManager(),
		spec:    spec,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(server)
	}
	server.Streams.logger = server.logger
	editor.Observe(server.Streams.Hooks())

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if server.metrics != nil {
		r.Method(http.MethodGet, "/metrics", server.metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(server.validateRequest)

		r.Get("/health", server.GetHealth)
		r.Get("/info", server.GetInfo)
		r.Get("/state", server.GetState)
		r.Get("/canvas", server.GetCanvas)
		r.Post("/canvas/open", server.OpenCanvas)
		r.Post("/sections", server.AddSection)
		r.Post("/sections/reorder", server.ReorderSections)
		r.Patch("/sections/{id}", server.UpdateSection)
		r.Delete("/sections/{id}", server.DeleteSection)
		r.Post("/sections/{id}/move-up", server.MoveSectionUp)
		r.Post("/sections/{id}/move-down", server.MoveSectionDown)
		r.Put("/selection", server.SelectSection)
		r.Post("/undo", server.Undo)
		r.Post("/redo", server.Redo)
		r.Post("/save", server.Save)
		r.Post("/publish", server.Publish)
		r.Get("/snapshot", server.ExportSnapshot)
		r.Post("/snapshot", server.ImportSnapshot)
		r.Post("/proposals", server.ApplyProposal)
		r.Delete("/notices/{id}", server.DismissNotice)
		r.Get("/templates", server.ListTemplates)
		r.Get("/allowed-sections", server.ListAllowedSections)
		r.Get("/events", server.SubscribeEvents)
	})

	return enableCORS(r), nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Blueprint API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "blueprint-http",
		"version":     strings.TrimSpace(blueprint.Version),
		"api_version": s.spec.doc.Info.Version,
	})
}

// GetState handles the GET /state request.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Editor.State())
}

// GetCanvas handles the GET /canvas request.
func (s *Server) GetCanvas(w http.ResponseWriter, r *http.Request) {
	canvas, err := s.Editor.Canvas()
	s.respond(w, r, "GetCanvas", canvas, err)
}

// OpenCanvas handles the POST /canvas/open request.
func (s *Server) OpenCanvas(w http.ResponseWriter, r *http.Request) {
	var body struct {
		StoreID    string `json:"storeId"`
		PageTypeID string `json:"pageTypeId"`
	}
	if !s.decode(w, r, "OpenCanvas", &body) {
		return
	}
	canvas, err := s.Editor.Open(r.Context(), body.StoreID, body.PageTypeID)
	s.respond(w, r, "OpenCanvas", canvas, err)
}

// AddSection handles the POST /sections request.
func (s *Server) AddSection(w http.ResponseWriter, r *http.Request) {
	var body domain.AddSectionRequest
	if !s.decode(w, r, "AddSection", &body) {
		return
	}
	canvas, err := s.Editor.AddSection(r.Context(), body)
	s.respond(w, r, "AddSection", canvas, err)
}

// UpdateSection handles the PATCH /sections/{id} request.
func (s *Server) UpdateSection(w http.ResponseWriter, r *http.Request) {
	var patch domain.SectionPatch
	if !s.decode(w, r, "UpdateSection", &patch) {
		return
	}
	canvas, err := s.Editor.UpdateSection(r.Context(), chi.URLParam(r, "id"), patch)
	s.respond(w, r, "UpdateSection", canvas, err)
}

// DeleteSection handles the DELETE /sections/{id} request.
func (s *Server) DeleteSection(w http.ResponseWriter, r *http.Request) {
	canvas, err := s.Editor.DeleteSection(r.Context(), chi.URLParam(r, "id"))
	s.respond(w, r, "DeleteSection", canvas, err)
}

// MoveSectionUp handles the POST /sections/{id}/move-up request.
func (s *Server) MoveSectionUp(w http.ResponseWriter, r *http.Request) {
	canvas, err := s.Editor.MoveUp(r.Context(), chi.URLParam(r, "id"))
	s.respond(w, r, "MoveSectionUp", canvas, err)
}

// MoveSectionDown handles the POST /sections/{id}/move-down request.
func (s *Server) MoveSectionDown(w http.ResponseWriter, r *http.Request) {
	canvas, err := s.Editor.MoveDown(r.Context(), chi.URLParam(r, "id"))
	s.respond(w, r, "MoveSectionDown", canvas, err)
}

// ReorderSections handles the POST /sections/reorder request.
func (s *Server) ReorderSections(w http.ResponseWriter, r *http.Request) {
	var body struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if !s.decode(w, r, "ReorderSections", &body) {
		return
	}
	canvas, err := s.Editor.Reorder(r.Context(), body.From, body.To)
	s.respond(w, r, "ReorderSections", canvas, err)
}

// SelectSection handles the PUT /selection request.
// An empty id clears the selection.
func (s *Server) SelectSection(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	if !s.decode(w, r, "SelectSection", &body) {
		return
	}
	if err := s.Editor.Select(body.ID); err != nil {
		s.writeError(w, "SelectSection", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Undo handles the POST /undo request.
func (s *Server) Undo(w http.ResponseWriter, r *http.Request) {
	canvas, err := s.Editor.Undo(r.Context())
	s.respond(w, r, "Undo", canvas, err)
}

// Redo handles the POST /redo request.
func (s *Server) Redo(w http.ResponseWriter, r *http.Request) {
	canvas, err := s.Editor.Redo(r.Context())
	s.respond(w, r, "Redo", canvas, err)
}

// Save handles the POST /save request.
func (s *Server) Save(w http.ResponseWriter, r *http.Request) {
	canvas, err := s.Editor.Save(r.Context())
	s.respond(w, r, "Save", canvas, err)
}

// Publish handles the POST /publish request.
func (s *Server) Publish(w http.ResponseWriter, r *http.Request) {
	canvas, err := s.Editor.Publish(r.Context())
	s.respond(w, r, "Publish", canvas, err)
}

// ExportSnapshot handles the GET /snapshot request.
func (s *Server) ExportSnapshot(w http.ResponseWriter, r *http.Request) {
	data, err := s.Editor.ExportSnapshot()
	if err != nil {
		s.writeError(w, "ExportSnapshot", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="canvas.json"`)
	w.Write(data)
}

// ImportSnapshot handles the POST /snapshot request.
func (s *Server) ImportSnapshot(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("ImportSnapshot: Invalid request body", "err", err)
		return
	}
	canvas, err := s.Editor.ImportSnapshot(r.Context(), data)
	s.respond(w, r, "ImportSnapshot", canvas, err)
}

// ApplyProposal handles the POST /proposals request.
func (s *Server) ApplyProposal(w http.ResponseWriter, r *http.Request) {
	var body domain.LayoutRequest
	if !s.decode(w, r, "ApplyProposal", &body) {
		return
	}
	canvas, err := s.Editor.ApplyAIProposal(r.Context(), body)
	s.respond(w, r, "ApplyProposal", canvas, err)
}

// DismissNotice handles the DELETE /notices/{id} request.
func (s *Server) DismissNotice(w http.ResponseWriter, r *http.Request) {
	if !s.Editor.DismissNotice(chi.URLParam(r, "id")) {
		http.Error(w, "Notice not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTemplates handles the GET /templates request.
func (s *Server) ListTemplates(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Editor.Templates(r.Context()))
}

// ListAllowedSections handles the GET /allowed-sections request.
func (s *Server) ListAllowedSections(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Editor.AllowedSections(r.Context()))
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, op string, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn(op+": Invalid request body", "err", err)
		return false
	}
	return true
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, op string, canvas *domain.Canvas, err error) {
	if err != nil {
		s.writeError(w, op, err)
		return
	}
	s.writeJSON(w, http.StatusOK, canvas)
}

func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	} else {
		s.logger.Debug(op+" rejected", "err", err, "status", status)
	}
	http.Error(w, err.Error(), status)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSectionNotFound), errors.Is(err, domain.ErrCanvasNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrIndexOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidSnapshot), errors.Is(err, domain.ErrInvalidProposal):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNoCanvas), errors.Is(err, domain.ErrStaleResponse):
		return http.StatusConflict
	case errors.Is(err, domain.ErrTransientFetch):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
