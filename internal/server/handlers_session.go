package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/raaihank/scandidate/internal/privacy"
	"github.com/raaihank/scandidate/internal/session"
)

type redactRequest struct {
	Text string `json:"text"`
}

type redactResponse struct {
	MaskedText string         `json:"maskedText"`
	Findings   privacy.Report `json:"findings"`
	Total      int            `json:"total"`
	Summary    []string       `json:"summary"`
}

type contentRequest struct {
	Content string `json:"content"`
}

type toggleRequest struct {
	Enabled *bool `json:"enabled"`
}

// handleRedact masks a text without creating a session
func (s *Server) handleRedact(w http.ResponseWriter, r *http.Request) {
	var req redactRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.detector.Redact(req.Text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, redactResponse{
		MaskedText: result.MaskedText,
		Findings:   result.Report,
		Total:      result.Report.Total(),
		Summary:    result.Report.Lines(),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create(r.Context())
	w.Header().Set("Location", "/api/sessions/"+sess.ID())
	writeJSON(w, http.StatusCreated, sess.View())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.View())
}

// handleEditContent replaces the session content from a JSON body or an
// uploaded file.
func (s *Server) handleEditContent(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var content string
	if isMultipart(r) {
		text, err := s.readUpload(w, r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		content = text
	} else {
		var req contentRequest
		if err := s.decodeJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		content = req.Content
	}

	sess.Edit(r.Context(), content)
	writeJSON(w, http.StatusOK, sess.View())
}

func (s *Server) handleClearContent(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.ClearAll(r.Context())
	writeJSON(w, http.StatusOK, sess.View())
}

func (s *Server) handleSetPrivacy(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	enabled, err := s.decodeToggle(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess.SetPrivacyMode(r.Context(), enabled)
	writeJSON(w, http.StatusOK, sess.View())
}

func (s *Server) handleSetAutoDelete(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	enabled, err := s.decodeToggle(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess.SetAutoDelete(r.Context(), enabled)
	writeJSON(w, http.StatusOK, sess.View())
}

// handleToggleReveal flips between masked and original text while privacy
// mode is on.
func (s *Server) handleToggleReveal(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.ToggleReveal()
	writeJSON(w, http.StatusOK, sess.View())
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	artifact, err := sess.Download()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Content)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact.Content)
}

// session resolves the {id} route variable, writing a 404 when unknown
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) decodeToggle(w http.ResponseWriter, r *http.Request) (bool, error) {
	var req toggleRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		return false, err
	}
	if req.Enabled == nil {
		return false, fmt.Errorf("%w: enabled is required", errBadRequest)
	}
	return *req.Enabled, nil
}
