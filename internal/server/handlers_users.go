package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"itrack/internal/api"
	internalauth "itrack/internal/auth"
	"itrack/internal/models"
	"itrack/internal/store"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if _, err := s.requireRole(r, models.RoleAdmin); err != nil {
		s.handleError(w, r, err)
		return
	}

	filter := store.UserFilter{Query: strings.TrimSpace(r.URL.Query().Get("q"))}
	if raw := r.URL.Query().Get("role"); raw != "" {
		role, err := models.ParseRole(raw)
		if err != nil {
			s.handleError(w, r, badRequest(err))
			return
		}
		filter.Role = role
	}
	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 0 {
			s.handleError(w, r, badRequest(fmt.Errorf("invalid page: %q", raw)))
			return
		}
		filter.Page = page
	}
	if raw := r.URL.Query().Get("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size <= 0 {
			s.handleError(w, r, badRequest(fmt.Errorf("invalid size: %q", raw)))
			return
		}
		filter.Size = size
	}

	users, err := s.store.ListUsers(r.Context(), filter)
	if err != nil {
		s.handleError(w, r, storeFailure(err))
		return
	}
	if users == nil {
		users = []models.User{}
	}
	s.writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	if _, err := s.requireRole(r, models.RoleAdmin); err != nil {
		s.handleError(w, r, err)
		return
	}

	var req api.UserCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}

	loginID, err := internalauth.NormalizeLoginID(req.LoginID)
	if err != nil {
		s.handleError(w, r, badRequest(err))
		return
	}
	if err := internalauth.ValidatePassword(req.Password); err != nil {
		s.handleError(w, r, badRequest(err))
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = loginID
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		s.handleError(w, r, badRequest(err))
		return
	}

	hash, err := internalauth.HashPassword(req.Password)
	if err != nil {
		s.handleError(w, r, storeFailure(err))
		return
	}

	created, err := s.store.CreateUser(r.Context(), loginID, hash, name, role, time.Now().UTC())
	if err != nil {
		if store.IsUniqueConstraint(err) {
			s.handleError(w, r, conflict(fmt.Errorf("login id %q already exists", loginID)))
			return
		}
		s.handleError(w, r, storeFailure(err))
		return
	}
	s.writeJSON(w, http.StatusCreated, created.User())
}
