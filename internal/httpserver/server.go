// Package httpserver is the engine's HTTP front end: it serves the
// document root, compiling and rendering .jhp documents through the
// executor pool and passing everything else through verbatim.
package httpserver

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"jhp/internal/config"
	"jhp/internal/executor"
	"jhp/internal/logging"
	"jhp/internal/metrics"
	"jhp/internal/parser"
)

// Server serves one document root through an executor pool. It implements
// http.Handler itself rather than delegating to http.ServeMux: ServeMux's
// built-in path-cleaning redirect would resolve a "/../" traversal attempt
// into a clean path and 301 before the traversal check ever ran, which is
// exactly the behavior the traversal check needs to prevent.
type Server struct {
	cfg  *config.EngineConfig
	pool *executor.Pool
}

// New wires a Server for cfg's document root against pool.
func New(cfg *config.EngineConfig, pool *executor.Pool) *Server {
	return &Server{cfg: cfg, pool: pool}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		plainError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}
	s.handle(w, r)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	log := logging.Get(logging.CategoryHTTP)
	metrics.RequestsTotal.Inc()

	rel := strings.TrimPrefix(r.URL.Path, "/")

	// Root path: empty or only slashes -> render the index file or 404.
	if strings.Trim(rel, "/") == "" {
		s.renderOrServe(w, r, s.cfg.IndexFile, s.cfg.IndexFile, true)
		return
	}

	if strings.Contains(rel, "..") {
		log.Warnf("rejected path traversal attempt: %s", r.URL.Path)
		plainError(w, http.StatusForbidden, "Invalid path")
		return
	}

	s.renderOrServe(w, r, rel, rel, false)
}

// renderOrServe reads docRelPath under the document root and either renders
// it through the executor pool (if it ends in .jhp) or serves it verbatim.
// resourceName is the name reported in render diagnostics; isIndex governs
// the 404 message, which always cites the original path the client asked
// for, matching the engine's "Cannot get '/...': File Not Found" wording.
func (s *Server) renderOrServe(w http.ResponseWriter, r *http.Request, docRelPath, resourceName string, isIndex bool) {
	log := logging.Get(logging.CategoryHTTP)
	full := filepath.Join(s.cfg.DocumentRoot, docRelPath)

	src, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if isIndex {
				plainError(w, http.StatusNotFound, "Cannot get '/': File Not Found")
			} else {
				plainError(w, http.StatusNotFound, fmt.Sprintf("Cannot get '/%s': File Not Found", docRelPath))
			}
			return
		}
		log.Errorf("read %s: %v", full, err)
		plainError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if !strings.HasSuffix(docRelPath, ".jhp") {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(src)
		return
	}

	doc := parser.New(string(src)).Parse()

	respond := make(chan executor.RenderResult, 1)
	req := &executor.RenderRequest{Blocks: doc.Blocks, ResourceName: resourceName, RespondTo: respond}
	s.pool.Submit(executor.Op{Render: req})

	select {
	case result := <-respond:
		if result.Err != nil {
			log.Errorf("render %s: %v", resourceName, result.Err)
			plainError(w, http.StatusServiceUnavailable, "Executor unavailable")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(result.Output))
	case <-r.Context().Done():
		plainError(w, http.StatusServiceUnavailable, "Executor unavailable")
	}
}

// plainError writes a bare-text error body, matching the engine's
// (StatusCode, &str) response convention instead of net/http's default
// "<code> <status text>\n" wrapping.
func plainError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(msg))
}
