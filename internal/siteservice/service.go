// Package siteservice is the operation layer shared by the HTTP API, the MCP
// server and the CLI.
package siteservice

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/reconstruct"
	"github.com/starford/folio/internal/section"
	"github.com/starford/folio/internal/semantic"
	"github.com/starford/folio/internal/storage"
	"github.com/starford/folio/internal/view"
)

// SectionItem is a lightweight item in a list response.
type SectionItem struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Order    int    `json:"order"`
	Checksum string `json:"checksum"`
}

// Service coordinates the loaded site, the parser and the renderers.
type Service struct {
	site     *view.Site
	renderer *view.Renderer
	parser   *semantic.Parser
}

// NewService creates a new site service.
func NewService(site *view.Site, renderer *view.Renderer, parser *semantic.Parser) *Service {
	if parser == nil {
		parser = semantic.NewParser()
	}
	return &Service{site: site, renderer: renderer, parser: parser}
}

// Site returns the underlying section set.
func (s *Service) Site() *view.Site { return s.site }

// ListSections returns the loaded sections in display order.
func (s *Service) ListSections(_ context.Context) []SectionItem {
	sections := s.site.Sections()
	items := make([]SectionItem, len(sections))
	for i, sec := range sections {
		items[i] = SectionItem{
			Slug:     sec.Slug,
			Title:    sec.Title(),
			Order:    sec.Frontmatter.Order(),
			Checksum: sec.Checksum,
		}
	}
	return items
}

// GetSection returns the section with slug.
func (s *Service) GetSection(_ context.Context, slug string) (section.Section, error) {
	return s.site.Find(slug)
}

// SectionAST parses the body of the section with slug.
func (s *Service) SectionAST(ctx context.Context, slug string) (*semantic.AST, error) {
	sec, err := s.GetSection(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.parser.Parse(sec.Content)
}

// RenderSection renders the section with slug in mode as a fragment.
func (s *Service) RenderSection(ctx context.Context, slug string, mode view.Mode) (string, error) {
	sec, err := s.GetSection(ctx, slug)
	if err != nil {
		return "", err
	}
	return s.renderer.Section(mode, sec)
}

// Document renders the whole site in mode.
func (s *Service) Document(_ context.Context, mode view.Mode) (string, error) {
	return s.renderer.Render(mode, s.site)
}

// ParseMarkdown parses a markdown body. A leading frontmatter block is
// skipped.
func (s *Service) ParseMarkdown(ctx context.Context, src string) (*semantic.AST, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(src) == "" {
		return &semantic.AST{}, nil
	}
	return s.parser.Parse(section.New("", src).Content)
}

// Reconstruct recovers the sections contained in rendered HTML.
func (s *Service) Reconstruct(_ context.Context, r io.Reader) ([]section.Section, error) {
	sections, err := reconstruct.Document(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrInvalidInput, err)
	}
	return sections, nil
}

// Save writes sections to p as <slug>.md files.
func Save(ctx context.Context, p storage.Provider, sections []section.Section) error {
	for _, sec := range sections {
		if err := ctx.Err(); err != nil {
			return err
		}
		if sec.Slug == "" {
			return fmt.Errorf("%w: section without slug", apperr.ErrInvalidInput)
		}
		if err := p.Write(section.FileName(sec.Slug), []byte(sec.RawMarkdown)); err != nil {
			return fmt.Errorf("siteservice: save %s: %w", sec.Slug, err)
		}
	}
	return nil
}
