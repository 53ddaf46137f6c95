package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docmark/internal/page"
	"github.com/dgallion1/docmark/internal/parser"
	"github.com/go-chi/chi/v5"
)

// handleCreatePage loads an uploaded document into a new page.
func (s *Server) handleCreatePage(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	p, err := parser.ForFile(filename, parser.Options{PDFFallbackPdftotext: s.cfg.PDFFallbackPdftotext})
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	doc, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		s.log.Warn("document parse failed", "filename", filename, "error", err)
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	meta := page.Meta{Title: doc.Title, Source: r.FormValue("url")}
	if t := strings.TrimSpace(r.FormValue("title")); t != "" {
		meta.Title = t
	}
	if meta.Source == "" {
		meta.Source = filename
	}

	pg := page.New(doc.Root, meta, s.pageOptions(), s.log)
	if err := s.store.Put(pg); err != nil {
		storeError(w, err)
		return
	}
	s.log.Info("page created", "page_id", pg.ID, "filename", filename, "bytes", len(data))

	writeJSON(w, http.StatusCreated, map[string]any{
		"page_id": pg.ID,
		"title":   meta.Title,
		"url":     fmt.Sprintf("/api/pages/%s", pg.ID),
	})
}

func (s *Server) handleListPages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"pages": s.store.List()})
}

func (s *Server) handleGetPage(w http.ResponseWriter, r *http.Request) {
	pg, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, pg.Snapshot())
}

func (s *Server) handleDeletePage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "pageID")
	if err := s.store.Delete(id); err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (s *Server) handlePageHTML(w http.ResponseWriter, r *http.Request) {
	pg, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := pg.RenderHTML(&buf); err != nil {
		jsonError(w, "render failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handlePageMarkdown(w http.ResponseWriter, r *http.Request) {
	pg, ok := s.lookup(w, r)
	if !ok {
		return
	}
	md, err := pg.Markdown()
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = io.WriteString(w, md)
}

// lookup resolves the {pageID} URL parameter, writing the error response
// itself when the page is unknown.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*page.Page, bool) {
	pg, err := s.store.Get(chi.URLParam(r, "pageID"))
	if err != nil {
		storeError(w, err)
		return nil, false
	}
	return pg, true
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
