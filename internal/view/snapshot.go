package view

import "sync"

// Snapshot holds the first reader document rendered for a section set. It
// is written once and read-only afterwards.
type Snapshot struct {
	once sync.Once
	html string
	err  error
}

// Get returns the stored document, calling render on first use only.
func (s *Snapshot) Get(render func() (string, error)) (string, error) {
	s.once.Do(func() {
		s.html, s.err = render()
	})
	return s.html, s.err
}
