package httpx

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sudanchapagain/okhati-backend/internal/supabase"
)

const maxUploadBytes = 5 << 20

var allowedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

type UploadsHandler struct {
	Storage *supabase.Client
	Auth    *Authenticator
}

func (h *UploadsHandler) Register(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.Middleware, RequireStaff)
		r.Post("/api/upload", h.upload)
		r.Delete("/api/upload/{filename}", h.delete)
	})
}

func (h *UploadsHandler) upload(w http.ResponseWriter, r *http.Request) {
	if !h.Storage.Configured() {
		writeError(w, http.StatusServiceUnavailable, "file storage is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "file too large or malformed form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExts[ext] {
		writeError(w, http.StatusBadRequest, "unsupported file type")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read upload")
		return
	}

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	name := uuid.NewString() + ext
	url, err := h.Storage.Upload(r.Context(), name, contentType, content)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"filename": name, "url": url})
}

func (h *UploadsHandler) delete(w http.ResponseWriter, r *http.Request) {
	if !h.Storage.Configured() {
		writeError(w, http.StatusServiceUnavailable, "file storage is not configured")
		return
	}

	name := chi.URLParam(r, "filename")
	if name == "" || strings.Contains(name, "/") || strings.Contains(name, "..") {
		writeError(w, http.StatusBadRequest, "invalid filename")
		return
	}

	if err := h.Storage.Delete(r.Context(), name); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"detail": "deleted " + name})
}
