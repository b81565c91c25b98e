package httpserver

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jhp/internal/bindings"
	"jhp/internal/config"
	"jhp/internal/executor"
	"jhp/internal/registry"
	"jhp/internal/render"
)

func newTestServer(t *testing.T, docroot string) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DocumentRoot = docroot
	cfg.ExtensionsDir = filepath.Join(docroot, "ext")
	cfg.Executors = 2

	reg := registry.New(cfg.ExtensionsDir)
	installers := []bindings.Installer{
		bindings.Global(),
		bindings.LoadedModules(reg),
		bindings.Include(cfg.DocumentRoot, cfg.ExtensionsDir, reg),
	}
	pool := executor.NewPool(cfg.Executors, cfg.MailboxDepth, render.New(installers...), installers)
	pool.Start()
	t.Cleanup(pool.Join)

	return New(cfg, pool)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestServerRendersIndexAtRoot(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.jhp", "Hello, <?= 1 + 1 ?>")
	srv := newTestServer(t, dir)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %q", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "Hello, 2" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestServerServesPlainFileVerbatim(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "style.css", "body { color: red; }")
	srv := newTestServer(t, dir)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/style.css", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != "body { color: red; }" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestServerRejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.jhp", "ok")
	srv := newTestServer(t, dir)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/../../etc/passwd", nil))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if want := "Invalid path"; rec.Body.String() != want {
		t.Fatalf("body = %q, want %q", rec.Body.String(), want)
	}
}

func TestServerMissingFileIs404(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.jhp", "ok")
	srv := newTestServer(t, dir)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope.txt", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if want := "Cannot get '/nope.txt': File Not Found"; rec.Body.String() != want {
		t.Fatalf("body = %q, want %q", rec.Body.String(), want)
	}
}

func TestServerMissingIndexMessage(t *testing.T) {
	dir := t.TempDir()
	srv := newTestServer(t, dir)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if want := "Cannot get '/': File Not Found"; rec.Body.String() != want {
		t.Fatalf("body = %q, want %q", rec.Body.String(), want)
	}
}

func TestServerRenderErrorIncludesTrailer(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.jhp", "before<? undefinedThing(); ?>")
	srv := newTestServer(t, dir)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<!-- ERROR -->") {
		t.Fatalf("expected error trailer in body, got %q", rec.Body.String())
	}
}
