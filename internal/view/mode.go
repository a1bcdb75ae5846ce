// Package view renders the site in its view modes.
package view

import (
	"fmt"

	"github.com/starford/folio/internal/apperr"
)

// Mode is a way of presenting the sections.
type Mode string

const (
	// Page lays sections out from their parsed structure.
	Page Mode = "page"
	// Reader shows the rendered markdown as is.
	Reader Mode = "reader"
	// Raw shows the recovered markdown with highlighting.
	Raw Mode = "raw"
	// Source serves the reader document as plain text.
	Source Mode = "source"
)

// DefaultMode is used when neither the request nor the stored preference
// names a valid mode.
const DefaultMode = Reader

// Modes lists every mode in menu order.
var Modes = []Mode{Page, Reader, Raw, Source}

// ParseMode validates s.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("view: mode %q: %w", s, apperr.ErrInvalidMode)
}

// Resolve picks the mode for a request: the requested mode if valid, else
// the stored preference if valid, else DefaultMode.
func Resolve(requested, stored string) Mode {
	if m, err := ParseMode(requested); err == nil {
		return m
	}
	if m, err := ParseMode(stored); err == nil {
		return m
	}
	return DefaultMode
}

// Persistent reports whether choosing m should be remembered. Source is a
// one-off view.
func (m Mode) Persistent() bool {
	return m != Source
}

// ContentType is the response media type for m.
func (m Mode) ContentType() string {
	if m == Source {
		return "text/plain; charset=utf-8"
	}
	return "text/html; charset=utf-8"
}
