package api

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/dgallion1/docchat/internal/parser"
	"github.com/go-chi/chi/v5"
)

// handleDocumentInfo exposes the chunked shape of the source document. The
// cache revalidates by fingerprint, so this also reflects an on-disk
// replacement of the file.
func (s *Server) handleDocumentInfo(w http.ResponseWriter, r *http.Request) {
	units, fp, err := s.chunks.Get(s.cfg.DocumentPath)
	if err != nil {
		s.log.Error("chunking failed", "error", err)
		s.exchangeError(w, "failed to process the document", err, http.StatusInternalServerError)
		return
	}

	unitInfos := make([]map[string]any, len(units))
	for i, u := range units {
		unitInfos[i] = map[string]any{
			"title":      u.Title,
			"start_page": u.StartPage,
			"end_page":   u.EndPage,
		}
	}

	pages := 0
	if len(units) > 0 {
		pages = units[len(units)-1].EndPage
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"document":    filepath.Base(s.cfg.DocumentPath),
		"pages":       pages,
		"fingerprint": fp,
		"units":       unitInfos,
	})
}

// handlePageText returns the plain text of one source page, for showing the
// context a citation points at.
func (s *Server) handlePageText(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil || page < 1 {
		jsonError(w, "page must be a positive integer", http.StatusBadRequest)
		return
	}

	text, err := parser.PageText(s.cfg.DocumentPath, page)
	if err != nil {
		s.log.Error("page text extraction failed", "page", page, "error", err)
		s.exchangeError(w, "failed to read page", err, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"page": page,
		"text": text,
	})
}
