package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/folio/internal/siteservice"
	"github.com/starford/folio/internal/view"
)

// NewRouter creates a chi router with the document and API routes mounted.
// defaultMode is used when neither the query nor the preference cookie names
// a mode. sseHandler, if non-nil, is mounted at GET /api/events.
func NewRouter(svc *siteservice.Service, defaultMode view.Mode, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()

	r.With(ModeMiddleware(defaultMode)).Get("/", h.Document)

	r.Route("/api", func(r chi.Router) {
		r.Get("/sections", h.ListSections)
		r.Get("/sections/{slug}", h.GetSection)
		r.Get("/sections/{slug}/ast", h.SectionAST)
		r.Get("/sections/{slug}/raw", h.SectionRaw)
		r.Post("/reconstruct", h.Reconstruct)
		r.Post("/ast", h.ParseMarkdown)

		if sseHandler != nil {
			r.Get("/events", sseHandler.ServeHTTP)
		}
	})

	return r
}
