package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/folio/internal/semantic"
	"github.com/starford/folio/internal/siteservice"
	"github.com/starford/folio/internal/storage"
	"github.com/starford/folio/internal/view"
)

const heroSource = `---
order: 1
title: "Hero"
---
# Hello

- one
- two
`

// testEnv sets up a temp content dir, site, service and router.
func testEnv(t *testing.T, sseHandler http.Handler) (*siteservice.Service, http.Handler) {
	t.Helper()

	contentDir := t.TempDir()
	files := map[string]string{
		"hero.md":  heroSource,
		"about.md": "---\norder: 2\n---\nAbout *me*.\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(contentDir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	store, err := storage.NewFS(contentDir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	site := view.NewSite(store)
	if err := site.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	svc := siteservice.NewService(site, view.NewRenderer(view.Options{}), nil)
	return svc, NewRouter(svc, view.Reader, sseHandler)
}

func get(router http.Handler, target string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListSections(t *testing.T) {
	_, router := testEnv(t, nil)

	w := get(router, "/api/sections")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp SectionListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 2 || resp.Sections[0].Slug != "hero" || resp.Sections[1].Slug != "about" {
		t.Errorf("unexpected listing: %+v", resp)
	}
	if resp.Sections[0].Title != "Hero" {
		t.Errorf("title = %q, want Hero", resp.Sections[0].Title)
	}
}

func TestGetSection_ETag(t *testing.T) {
	_, router := testEnv(t, nil)

	w := get(router, "/api/sections/hero")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}
	var sec SectionDetail
	if err := json.Unmarshal(w.Body.Bytes(), &sec); err != nil {
		t.Fatal(err)
	}
	if sec.RawMarkdown != heroSource {
		t.Errorf("raw markdown = %q", sec.RawMarkdown)
	}
	if `"`+sec.Checksum+`"` != etag {
		t.Errorf("etag %s does not match checksum %s", etag, sec.Checksum)
	}

	w = get(router, "/api/sections/hero", "If-None-Match", etag)
	if w.Code != http.StatusNotModified {
		t.Errorf("conditional get = %d, want 304", w.Code)
	}

	w = get(router, "/api/sections/hero", "If-None-Match", `"stale"`)
	if w.Code != http.StatusOK {
		t.Errorf("stale etag = %d, want 200", w.Code)
	}
}

func TestGetSection_NotFound(t *testing.T) {
	_, router := testEnv(t, nil)

	for _, target := range []string{"/api/sections/nope", "/api/sections/nope/ast", "/api/sections/nope/raw"} {
		w := get(router, target)
		if w.Code != http.StatusNotFound {
			t.Errorf("%s = %d, want 404", target, w.Code)
		}
		if !strings.Contains(w.Body.String(), `"error":"not found"`) {
			t.Errorf("%s body = %s", target, w.Body.String())
		}
	}
}

func TestSectionAST(t *testing.T) {
	_, router := testEnv(t, nil)

	w := get(router, "/api/sections/hero/ast")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var nodes []semantic.Node
	if err := json.Unmarshal(w.Body.Bytes(), &nodes); err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 2 || nodes[0].Kind != semantic.KindHeading || nodes[1].Kind != semantic.KindList {
		t.Errorf("nodes = %+v", nodes)
	}
}

func TestSectionRaw(t *testing.T) {
	_, router := testEnv(t, nil)

	w := get(router, "/api/sections/about/raw")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "about.md") {
		t.Errorf("raw fragment missing file name: %s", w.Body.String())
	}
}

func TestDocument_ModeAndCookie(t *testing.T) {
	_, router := testEnv(t, nil)

	w := get(router, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `data-mode="reader"`) {
		t.Error("default mode should be reader")
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("no cookie expected without explicit choice")
	}

	w = get(router, "/?mode=page")
	if !strings.Contains(w.Body.String(), `data-mode="page"`) {
		t.Error("query mode not applied")
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != ModeCookie || cookies[0].Value != "page" {
		t.Fatalf("cookies = %+v", cookies)
	}

	w = get(router, "/", "Cookie", ModeCookie+"=raw")
	if !strings.Contains(w.Body.String(), `data-mode="raw"`) {
		t.Error("stored preference not applied")
	}

	w = get(router, "/?mode=source", "Cookie", ModeCookie+"=page")
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("source content type = %q", ct)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("source mode must not be persisted")
	}

	w = get(router, "/?mode=bogus", "Cookie", ModeCookie+"=bogus")
	if !strings.Contains(w.Body.String(), `data-mode="reader"`) {
		t.Error("invalid values should fall back to reader")
	}
}

func TestReconstructRoundTrip(t *testing.T) {
	_, router := testEnv(t, nil)

	doc := get(router, "/?mode=reader").Body.String()
	req := httptest.NewRequest(http.MethodPost, "/api/reconstruct", strings.NewReader(doc))
	req.Header.Set("Content-Type", "text/html")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp ReconstructResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(resp.Sections))
	}
	hero := resp.Sections[0]
	if hero.Slug != "hero" || !strings.Contains(hero.Content, "# Hello") || !strings.Contains(hero.Content, "*   one") {
		t.Errorf("hero = %+v", hero)
	}
	if !strings.HasPrefix(hero.RawMarkdown, "---\norder: 1\ntitle: \"Hero\"\n---\n\n") {
		t.Errorf("raw markdown = %q", hero.RawMarkdown)
	}
}

func TestReconstruct_NoSections(t *testing.T) {
	_, router := testEnv(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/reconstruct", strings.NewReader("<p>plain</p>"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"sections":[]`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestParseMarkdown(t *testing.T) {
	_, router := testEnv(t, nil)

	body, _ := json.Marshal(ParseMarkdownRequest{Markdown: "## Title\n\n![a](/a.png)"})
	req := httptest.NewRequest(http.MethodPost, "/api/ast", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var nodes []semantic.Node
	if err := json.Unmarshal(w.Body.Bytes(), &nodes); err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 2 || nodes[0].Level != 2 || nodes[1].Kind != semantic.KindImage || nodes[1].Src != "/a.png" {
		t.Errorf("nodes = %+v", nodes)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/ast", strings.NewReader("not json"))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid body = %d, want 400", w.Code)
	}
}

func TestSSEEventsMounted(t *testing.T) {
	sseHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		<-r.Context().Done()
	})
	_, router := testEnv(t, sseHandler)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}

	_, bare := testEnv(t, nil)
	if w := get(bare, "/api/events"); w.Code != http.StatusNotFound {
		t.Errorf("events without broker = %d, want 404", w.Code)
	}
}

func TestParseMarkdown_BodyLimits(t *testing.T) {
	_, router := testEnv(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/ast", strings.NewReader(`{"markdown":"x","extra":1}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown field = %d, want 400", w.Code)
	}

	huge := `{"markdown":"` + strings.Repeat("a", maxBody) + `"}`
	req = httptest.NewRequest(http.MethodPost, "/api/ast", strings.NewReader(huge))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("oversized body = %d, want 413", w.Code)
	}
}
