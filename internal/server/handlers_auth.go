package server

import (
	"net/http"

	"github.com/raaihank/scandidate/internal/identity"
	"go.uber.org/zap"
)

type registerResponse struct {
	Message string         `json:"message"`
	User    *identity.User `json:"user"`
}

type loginResponse struct {
	Message string `json:"message"`
	*identity.LoginResult
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req identity.RegisterRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.identity.Register(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.WithRequestID(getRequestID(r.Context())).Info("User registered", zap.String("user_id", user.ID))
	writeJSON(w, http.StatusCreated, registerResponse{Message: "User registered successfully", User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req identity.LoginRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.identity.Login(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Message: "Login successful", LoginResult: result})
}
