package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/checksum"
)

func newStore(t *testing.T) *FS {
	t.Helper()
	s, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return s
}

func TestWriteThenRead(t *testing.T) {
	s := newStore(t)
	body := []byte("---\norder: 1\n---\n# Hello\n")
	if err := s.Write("intro.md", body); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("intro.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(body) {
		t.Errorf("Read = %q", got)
	}

	info, err := os.Stat(filepath.Join(s.Root(), "intro.md"))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != filePerm {
		t.Errorf("perm = %o, want %o", perm, filePerm)
	}
}

func TestWrite_ReplacesWithoutStagingLeftovers(t *testing.T) {
	s := newStore(t)
	if err := s.Write("a.md", []byte("old")); err != nil {
		t.Fatal(err)
	}
	if err := s.Write("a.md", []byte("new")); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Read("a.md")
	if string(got) != "new" {
		t.Errorf("content = %q", got)
	}

	entries, err := os.ReadDir(s.Root())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("dir holds %d entries, want only a.md", len(entries))
	}
}

func TestFiles(t *testing.T) {
	s := newStore(t)
	for name, body := range map[string]string{
		"b.md":       "b",
		"a.md":       "aa",
		".hidden.md": "x",
		"notes.txt":  "x",
		"sub/c.md":   "x",
	} {
		p := filepath.Join(s.Root(), name)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := s.Files()
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(files) != 2 || files[0].Name != "a.md" || files[1].Name != "b.md" {
		t.Fatalf("files = %+v", files)
	}
	a := files[0]
	if a.Slug != "a" || a.Size != 2 || a.Checksum != checksum.Sum([]byte("aa")) || a.ModTime.IsZero() {
		t.Errorf("a.md = %+v", a)
	}
}

func TestRead_Missing(t *testing.T) {
	_, err := newStore(t).Read("gone.md")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRejectsNonSectionNames(t *testing.T) {
	s := newStore(t)
	for _, name := range []string{
		"../../etc/passwd",
		"../outside.md",
		"/etc/shadow.md",
		"sub/deep.md",
		".hidden.md",
		"readme.txt",
		".md",
		"",
	} {
		if _, err := s.Read(name); !errors.Is(err, apperr.ErrInvalidInput) {
			t.Errorf("Read(%q) err = %v", name, err)
		}
		if err := s.Write(name, []byte("x")); !errors.Is(err, apperr.ErrInvalidInput) {
			t.Errorf("Write(%q) err = %v", name, err)
		}
	}
}

func TestNewFS_Errors(t *testing.T) {
	if _, err := NewFS(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing dir")
	}

	file := filepath.Join(t.TempDir(), "plain")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFS(file); err == nil {
		t.Error("expected error when root is a file")
	}
}
