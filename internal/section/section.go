// Package section models the content units of the site: one markdown file
// with frontmatter per section.
package section

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/checksum"
	"github.com/starford/folio/internal/frontmatter"
	"github.com/starford/folio/internal/storage"
)

// Section is one content unit. Values are not modified after construction.
type Section struct {
	Slug        string             `json:"slug"`
	Frontmatter frontmatter.Record `json:"frontmatter"`
	Content     string             `json:"content"`
	RawMarkdown string             `json:"raw_markdown"`
	Checksum    string             `json:"checksum"`
}

// New decodes raw into a section.
func New(slug, raw string) Section {
	fm, body := frontmatter.Decode(raw)
	return Section{
		Slug:        slug,
		Frontmatter: fm,
		Content:     body,
		RawMarkdown: raw,
		Checksum:    checksum.String(raw),
	}
}

// Assemble builds a section from parts, serializing the raw markdown as the
// frontmatter block, a blank line and the content.
func Assemble(slug string, fm frontmatter.Record, content string) Section {
	raw := frontmatter.Encode(fm) + "\n\n" + content
	return Section{
		Slug:        slug,
		Frontmatter: fm,
		Content:     content,
		RawMarkdown: raw,
		Checksum:    checksum.String(raw),
	}
}

// Title returns the frontmatter title, falling back to the slug.
func (s Section) Title() string {
	if t := s.Frontmatter.Title(); t != "" {
		return t
	}
	return s.Slug
}

// Load reads every section file of p and returns the sections sorted by
// order. Ties keep file name order.
func Load(ctx context.Context, p storage.Provider) ([]Section, error) {
	files, err := p.Files()
	if err != nil {
		return nil, fmt.Errorf("section: list: %w", err)
	}

	out := make([]Section, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := p.Read(f.Name)
		if err != nil {
			return nil, fmt.Errorf("section: read %s: %w", f.Name, err)
		}
		out = append(out, New(f.Slug, string(data)))
	}
	Sort(out)
	return out, nil
}

// SlugOf derives a slug from a file name.
func SlugOf(path string) string {
	return strings.TrimSuffix(filepath.Base(path), storage.Ext)
}

// FileName is the file a section is stored in.
func FileName(slug string) string {
	return slug + storage.Ext
}

// Sort orders sections by frontmatter order, keeping the relative order of
// equal elements.
func Sort(sections []Section) {
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].Frontmatter.Order() < sections[j].Frontmatter.Order()
	})
}

// Find returns the section with slug.
func Find(sections []Section, slug string) (Section, error) {
	for _, s := range sections {
		if s.Slug == slug {
			return s, nil
		}
	}
	return Section{}, fmt.Errorf("section %q: %w", slug, apperr.ErrNotFound)
}
