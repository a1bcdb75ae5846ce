// Package storage keeps section files in a flat content directory. Each
// section lives in one top-level <slug>.md file.
package storage

import "time"

// Ext is the extension every section file carries.
const Ext = ".md"

// FileInfo describes one section file.
type FileInfo struct {
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	Size     int64     `json:"size"`
	Checksum string    `json:"checksum"`
	ModTime  time.Time `json:"mod_time"`
}

// Provider reads and writes section files by bare file name.
type Provider interface {
	// Files returns the section files of the content directory in name
	// order. Subdirectories and hidden files are not sections.
	Files() ([]FileInfo, error)
	Read(name string) ([]byte, error)
	// Write replaces name without exposing a partially written file.
	Write(name string, content []byte) error
}
