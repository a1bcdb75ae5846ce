package api

import (
	"github.com/starford/folio/internal/section"
	"github.com/starford/folio/internal/siteservice"
)

// SectionItem is a lightweight item in a list response (aliased from the
// service layer).
type SectionItem = siteservice.SectionItem

// SectionListResponse wraps section listings.
type SectionListResponse struct {
	Sections []SectionItem `json:"sections" validate:"required"`
	Total    int           `json:"total" example:"5" validate:"required"`
}

// SectionDetail is the full section response type.
type SectionDetail = section.Section

// ReconstructResponse is returned by POST /api/reconstruct.
type ReconstructResponse struct {
	Sections []SectionDetail `json:"sections" validate:"required"`
}

// ParseMarkdownRequest is the request body for POST /api/ast.
type ParseMarkdownRequest struct {
	Markdown string `json:"markdown" example:"# Hello\nWorld" validate:"required"`
}
