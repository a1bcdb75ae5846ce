package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/folio/internal/checksum"
	"github.com/starford/folio/internal/siteservice"
	"github.com/starford/folio/internal/view"
)

// Handler holds API route handlers.
type Handler struct {
	svc *siteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *siteservice.Service) *Handler {
	return &Handler{svc: svc}
}

// Document handles GET /.
//
//	@Summary		Render the site in a view mode
//	@Tags			site
//	@Produce		html
//	@Param			mode	query	string	false	"View mode"	Enums(page, reader, raw, source)
//	@Success		200
//	@Router			/ [get]
func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	mode := ModeFrom(r.Context())
	doc, err := h.svc.Document(r.Context(), mode)
	if err != nil {
		writeError(w, "render document", err)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	writeBody(w, mode.ContentType(), doc)
}

// ListSections handles GET /api/sections.
//
//	@Summary		List loaded sections in display order
//	@Tags			sections
//	@Produce		json
//	@Success		200	{object}	SectionListResponse
//	@Router			/api/sections [get]
func (h *Handler) ListSections(w http.ResponseWriter, r *http.Request) {
	items := h.svc.ListSections(r.Context())
	writeJSON(w, http.StatusOK, SectionListResponse{Sections: items, Total: len(items)})
}

// GetSection handles GET /api/sections/{slug}.
//
//	@Summary		Get a single section by slug
//	@Tags			sections
//	@Produce		json
//	@Param			slug			path	string	true	"Section slug"
//	@Param			If-None-Match	header	string	false	"Checksum from a previous response"
//	@Success		200	{object}	SectionDetail
//	@Success		304
//	@Failure		404	{object}	errResponse
//	@Router			/api/sections/{slug} [get]
func (h *Handler) GetSection(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	sec, err := h.svc.GetSection(r.Context(), slug)
	if err != nil {
		writeError(w, "get section", err)
		return
	}
	w.Header().Set("ETag", checksum.ETag(sec.Checksum))
	if checksum.Matches(r.Header.Get("If-None-Match"), sec.Checksum) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, sec)
}

// SectionAST handles GET /api/sections/{slug}/ast.
//
//	@Summary		Semantic AST of a section body
//	@Tags			sections
//	@Produce		json
//	@Param			slug	path		string	true	"Section slug"
//	@Success		200		{array}		semantic.Node
//	@Failure		404		{object}	errResponse
//	@Router			/api/sections/{slug}/ast [get]
func (h *Handler) SectionAST(w http.ResponseWriter, r *http.Request) {
	ast, err := h.svc.SectionAST(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, "section ast", err)
		return
	}
	writeJSON(w, http.StatusOK, ast)
}

// SectionRaw handles GET /api/sections/{slug}/raw.
//
//	@Summary		Highlighted raw markdown of a section
//	@Tags			sections
//	@Produce		html
//	@Param			slug	path		string	true	"Section slug"
//	@Success		200
//	@Failure		404		{object}	errResponse
//	@Router			/api/sections/{slug}/raw [get]
func (h *Handler) SectionRaw(w http.ResponseWriter, r *http.Request) {
	frag, err := h.svc.RenderSection(r.Context(), chi.URLParam(r, "slug"), view.Raw)
	if err != nil {
		writeError(w, "section raw", err)
		return
	}
	writeBody(w, "text/html; charset=utf-8", frag)
}

// Reconstruct handles POST /api/reconstruct.
//
//	@Summary		Recover sections from rendered HTML
//	@Tags			pipeline
//	@Accept			html
//	@Produce		json
//	@Success		200	{object}	ReconstructResponse
//	@Failure		400	{object}	errResponse
//	@Router			/api/reconstruct [post]
func (h *Handler) Reconstruct(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	sections, err := h.svc.Reconstruct(r.Context(), r.Body)
	if err != nil {
		writeError(w, "reconstruct", err)
		return
	}
	if sections == nil {
		sections = []SectionDetail{}
	}
	writeJSON(w, http.StatusOK, ReconstructResponse{Sections: sections})
}

// ParseMarkdown handles POST /api/ast.
//
//	@Summary		Parse markdown into the semantic AST
//	@Tags			pipeline
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ParseMarkdownRequest	true	"Markdown source"
//	@Success		200		{array}		semantic.Node
//	@Failure		400		{object}	errResponse
//	@Router			/api/ast [post]
func (h *Handler) ParseMarkdown(w http.ResponseWriter, r *http.Request) {
	var req ParseMarkdownRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "parse markdown", err)
		return
	}
	ast, err := h.svc.ParseMarkdown(r.Context(), req.Markdown)
	if err != nil {
		writeError(w, "parse markdown", err)
		return
	}
	writeJSON(w, http.StatusOK, ast)
}
