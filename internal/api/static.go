package api

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/spf13/afero"

	"github.com/endoverdosing/vyla-api/internal/log"
)

const spaIndex = "/index.html"

// handleStatic serves the frontend bundle. Extensionless paths that match no
// file fall back to index.html so client-side routes survive a reload.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		s.handleMethodNotAllowed(w, r)
		return
	}
	if s.static == nil {
		s.handleAPINotFound(w, r)
		return
	}

	name := path.Clean("/" + r.URL.Path)
	if name == "/" {
		name = spaIndex
	}

	isDir, err := afero.IsDir(s.static, name)
	if err == nil && isDir {
		name = path.Join(name, "index.html")
	}

	ok, err := afero.Exists(s.static, name)
	if err != nil {
		s.writeError(w, r, internalError(nil, "Internal server error", err))
		return
	}
	if !ok {
		if path.Ext(name) != "" {
			s.handleAPINotFound(w, r)
			return
		}
		name = spaIndex
	}

	s.serveStaticFile(w, r, name)
}

func (s *Server) serveStaticFile(w http.ResponseWriter, r *http.Request, name string) {
	f, err := s.static.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.handleAPINotFound(w, r)
			return
		}
		s.writeError(w, r, internalError(nil, "Internal server error", err))
		return
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		s.handleAPINotFound(w, r)
		return
	}

	// index.html must revalidate; hashed bundles under /assets never change.
	switch {
	case path.Base(name) == "index.html":
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	case strings.HasPrefix(name, "/assets/"):
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	}

	logger := log.WithComponentFromContext(r.Context(), "api")
	logger.Debug().
		Str(log.FieldEvent, "static.served").
		Str(log.FieldPath, name).
		Msg("static file")
	http.ServeContent(w, r, name, info.ModTime(), f)
}
