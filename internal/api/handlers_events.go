package api

import (
	"net/http"

	"github.com/dgallion1/docmark/internal/page"
)

// handleAction delivers one of the two page signals.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	pg, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req actionRequest
	if err := decodeRequest(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	switch req.Action {
	case ActionToggleHighlight:
		status := "Highlighting disabled"
		if pg.Toggle() {
			status = "Highlighting enabled"
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": status})
	case ActionClearHighlights:
		pg.Clear()
		writeJSON(w, http.StatusOK, map[string]string{"status": "Highlights cleared"})
	}
}

type eventResponse struct {
	Handled bool          `json:"handled"`
	Page    page.Snapshot `json:"page"`
}

// handleEvent dispatches a pointer-up or key-down event to the page. A
// pointer-up may carry the selection it ends.
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	pg, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req eventRequest
	if err := decodeRequest(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Type == page.EventPointerUp && req.Selection != nil {
		if err := pg.Select(req.Selection.Start, req.Selection.End); err != nil {
			// An unusable selection is ignored, like a click outside the text.
			s.log.Debug("selection ignored", "page_id", pg.ID, "error", err)
			writeJSON(w, http.StatusOK, eventResponse{Page: pg.Snapshot()})
			return
		}
	}

	handled := pg.Dispatch(page.Event{Type: req.Type, Key: req.Key, Target: req.Target})
	writeJSON(w, http.StatusOK, eventResponse{Handled: handled, Page: pg.Snapshot()})
}

func (s *Server) handleScroll(w http.ResponseWriter, r *http.Request) {
	pg, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req scrollRequest
	if err := decodeRequest(w, r, &req); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	pg.Scroll(req.X, req.Y)
	writeJSON(w, http.StatusOK, pg.Snapshot())
}
