package api

import (
	"bytes"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"

	"github.com/endoverdosing/vyla-api/internal/images"
	"github.com/endoverdosing/vyla-api/internal/log"
	"github.com/endoverdosing/vyla-api/internal/telemetry"
)

const (
	imageSourceTMDB     = "TMDB"
	imageSourceFallback = "Fallback"

	imageCacheControl    = "public, max-age=31536000, immutable"
	fallbackCacheControl = "public, max-age=3600"
	defaultImageType     = "image/jpeg"

	// sniffLen matches the mimetype default read limit.
	sniffLen = 3072
)

// fallbackPNG is a transparent 1x1 PNG served when the CDN fetch fails.
var fallbackPNG = mustDecode("iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII=")

func mustDecode(s string) []byte {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// handleImage streams a CDN image. Parameter errors are JSON; fetch errors
// are answered with the placeholder image so <img> tags degrade quietly.
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	size, file := chi.URLParam(r, "size"), chi.URLParam(r, "file")
	req := Request{"size": size, "file": file}

	if !images.IsProxySize(size) {
		s.writeError(w, r, validationError(req, "Invalid image size %q", size))
		return
	}
	if !imageFile(file) {
		s.writeError(w, r, validationError(req, "Invalid image file %q", file))
		return
	}

	span := trace.SpanFromContext(r.Context())
	img, err := s.provider.OpenImage(r.Context(), size, file)
	if err != nil {
		span.SetAttributes(telemetry.ImageAttributes(size, "fallback")...)
		s.writeFallbackImage(w, r, err)
		return
	}
	defer func() { _ = img.Body.Close() }()
	span.SetAttributes(telemetry.ImageAttributes(size, "tmdb")...)

	body := io.Reader(img.Body)
	contentType := img.ContentType
	if contentType == "" {
		head := make([]byte, sniffLen)
		n, rerr := io.ReadFull(img.Body, head)
		if rerr != nil && !errors.Is(rerr, io.ErrUnexpectedEOF) && !errors.Is(rerr, io.EOF) {
			s.writeFallbackImage(w, r, rerr)
			return
		}
		head = head[:n]
		contentType = mimetype.Detect(head).String()
		body = io.MultiReader(bytes.NewReader(head), img.Body)
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = defaultImageType
	}

	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Cache-Control", imageCacheControl)
	h.Set("X-Image-Source", imageSourceTMDB)
	h.Set("X-Image-Size", size)
	if img.ContentLength > 0 {
		h.Set("Content-Length", strconv.FormatInt(img.ContentLength, 10))
	}
	w.WriteHeader(http.StatusOK)
	s.metrics.RecordImage("tmdb")

	if _, err := io.Copy(w, body); err != nil {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Debug().Err(err).
			Str(log.FieldEvent, "image.copy_failed").
			Str("file", file).
			Msg("image stream interrupted")
	}
}

func (s *Server) writeFallbackImage(w http.ResponseWriter, r *http.Request, cause error) {
	logger := log.WithComponentFromContext(r.Context(), "api")
	logger.Debug().Err(cause).
		Str(log.FieldEvent, "image.fallback").
		Str(log.FieldPath, r.URL.Path).
		Msg("serving placeholder image")

	s.metrics.RecordImage("fallback")
	h := w.Header()
	h.Set("Content-Type", "image/png")
	h.Set("Cache-Control", fallbackCacheControl)
	h.Set("X-Image-Source", imageSourceFallback)
	h.Set("Content-Length", strconv.Itoa(len(fallbackPNG)))
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write(fallbackPNG)
}
