package view

import (
	"context"
	"fmt"
	"sync"

	"github.com/starford/folio/internal/section"
	"github.com/starford/folio/internal/storage"
)

// Site is the current section set. Reload swaps it as a whole; readers never
// see a partial set.
type Site struct {
	provider storage.Provider

	mu       sync.RWMutex
	sections []section.Section
	snap     *Snapshot
}

// NewSite creates an empty site backed by p. Call Reload to populate it.
func NewSite(p storage.Provider) *Site {
	return &Site{provider: p, snap: &Snapshot{}}
}

// Reload reads all sections from the provider.
func (s *Site) Reload(ctx context.Context) error {
	if s.provider == nil {
		return fmt.Errorf("view: reload: no provider")
	}
	sections, err := section.Load(ctx, s.provider)
	if err != nil {
		return fmt.Errorf("view: reload: %w", err)
	}
	s.Set(sections)
	return nil
}

// Set replaces the section set and drops the reader snapshot.
func (s *Site) Set(sections []section.Section) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sections = sections
	s.snap = &Snapshot{}
}

// Sections returns the sections in order.
func (s *Site) Sections() []section.Section {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]section.Section, len(s.sections))
	copy(out, s.sections)
	return out
}

// Find returns the section with slug.
func (s *Site) Find(slug string) (section.Section, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return section.Find(s.sections, slug)
}

// Len returns the number of sections.
func (s *Site) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sections)
}

func (s *Site) state() ([]section.Section, *Snapshot) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sections, s.snap
}
