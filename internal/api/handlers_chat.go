package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dgallion1/docchat/internal/chat"
	"github.com/dgallion1/docchat/internal/claude"
	"github.com/go-chi/chi/v5"
)

// turnView is the wire form of a transcript turn. HTML is rendered from
// markdown for assistant turns only.
type turnView struct {
	Role      string          `json:"role"`
	Content   string          `json:"content"`
	HTML      string          `json:"html,omitempty"`
	Citations []chat.Citation `json:"citations"`
}

func toTurnView(t chat.Turn) turnView {
	v := turnView{
		Role:      t.Role,
		Content:   t.Content,
		Citations: t.Citations,
	}
	if v.Citations == nil {
		v.Citations = []chat.Citation{}
	}
	if t.Role == chat.RoleAssistant {
		v.HTML = renderMarkdown(t.Content)
	}
	return v
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()
	s.log.Info("session created", "session_id", sess.ID())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"session_id": sess.ID(),
		"turns":      turnViews(sess.Turns()),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Get(chi.URLParam(r, "sessionID"))
	if sess == nil {
		jsonError(w, "session not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"session_id": sess.ID(),
		"turns":      turnViews(sess.Turns()),
	})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Get(chi.URLParam(r, "sessionID"))
	if sess == nil {
		jsonError(w, "session not found", http.StatusNotFound)
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		jsonError(w, "message is required", http.StatusBadRequest)
		return
	}

	// One in-flight exchange per session.
	if !sess.TryAcquire() {
		jsonError(w, "an exchange is already in progress for this session", http.StatusConflict)
		return
	}
	defer sess.Release()

	units, _, err := s.chunks.Get(s.cfg.DocumentPath)
	if err != nil {
		s.log.Error("chunking failed", "error", err)
		s.exchangeError(w, "failed to process the document", err, http.StatusInternalServerError)
		return
	}

	reply, err := s.assembler.Exchange(r.Context(), sess, units, req.Message)
	if err != nil {
		s.log.Error("exchange failed", "session_id", sess.ID(), "error", err)
		s.exchangeError(w, "error processing request", err, boundaryStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toTurnView(reply))
}

func turnViews(turns []chat.Turn) []turnView {
	views := make([]turnView, len(turns))
	for i, t := range turns {
		views[i] = toTurnView(t)
	}
	return views
}

// boundaryStatus maps model-boundary failures to 502; anything else is an
// internal error.
func boundaryStatus(err error) int {
	var derr *claude.DispatchError
	switch {
	case errors.Is(err, claude.ErrEmptyResponse),
		errors.Is(err, claude.ErrMalformedResponse),
		errors.As(err, &derr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// exchangeError writes a user-facing message; full technical detail is
// attached only in debug mode.
func (s *Server) exchangeError(w http.ResponseWriter, msg string, err error, code int) {
	body := map[string]string{"error": msg}
	if s.cfg.Debug {
		body["detail"] = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
