package api

import (
	"errors"
	"net/http"
	"os"
	"path"
	"regexp"
	"strings"

	"tasteal/internal/storage"
)

const defaultImageFolder = "recipeImages"

var folderName = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

type uploadResponse struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// handleUploadImage stores the multipart "file" under an optional "folder".
func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, r, badRequest("invalid multipart form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	folder := r.FormValue("folder")
	if folder == "" {
		folder = defaultImageFolder
	}
	if !folderName.MatchString(folder) {
		s.writeError(w, r, badRequest("invalid folder %q", folder))
		return
	}

	f, fh, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, badRequest("file is required"))
		return
	}
	defer f.Close()

	ext := strings.ToLower(path.Ext(fh.Filename))
	if !imageExts[ext] {
		s.writeError(w, r, badRequest("unsupported image type %q", ext))
		return
	}

	p, err := s.app.Images.Save(storage.ObjectName(folder, callerUID(r), ext), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, uploadResponse{Path: p, URL: s.app.Images.URL(p)})
}

func (s *Server) handleServeImage(w http.ResponseWriter, r *http.Request) {
	f, err := s.app.Images.Open(r.PathValue("path"))
	if errors.Is(err, storage.ErrInvalidPath) || errors.Is(err, os.ErrNotExist) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "image not found"})
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "image not found"})
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
