package server

import (
	"errors"
	"net/http"
	"time"

	"itrack/internal/api"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}

	result, err := s.authService.Login(r.Context(), req.LoginID, req.Password, time.Now().UTC())
	if err != nil {
		if errors.Is(err, errInvalidCredentials) {
			s.writeError(w, r, http.StatusUnauthorized, errInvalidCredentials)
			return
		}
		s.handleError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, api.LoginResponse{
		Token: result.Token,
		Role:  string(result.User.Role),
		Name:  result.User.Name,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := bearerToken(r); token != "" {
		if err := s.authService.Revoke(r.Context(), token, time.Now().UTC()); err != nil {
			s.handleError(w, r, storeFailure(err))
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
