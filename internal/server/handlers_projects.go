package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"itrack/internal/api"
	"itrack/internal/models"
	"itrack/internal/store"
)

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	user := actingUserFromContext(r.Context())
	if user == nil {
		s.writeError(w, r, http.StatusUnauthorized, errors.New("authentication required"))
		return
	}

	projects, err := s.store.ListProjects(r.Context(), user.ID, user.Role == models.RoleAdmin)
	if err != nil {
		s.handleError(w, r, storeFailure(err))
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}
	s.writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleListAllProjects(w http.ResponseWriter, r *http.Request) {
	user, err := s.requireRole(r, models.RoleAdmin)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	projects, err := s.store.ListProjects(r.Context(), user.ID, true)
	if err != nil {
		s.handleError(w, r, storeFailure(err))
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}
	s.writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	user, err := s.requireRole(r, models.RoleAdmin, models.RolePL)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	var req api.ProjectCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}
	req.ProjectID = strings.TrimSpace(req.ProjectID)
	req.Title = strings.TrimSpace(req.Title)
	if req.ProjectID == "" || req.Title == "" {
		s.handleError(w, r, badRequest(errors.New("projectId and title are required")))
		return
	}

	project := models.Project{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		DueDate:     req.DueDate,
	}
	if err := s.store.CreateProject(r.Context(), project, time.Now().UTC()); err != nil {
		if store.IsUniqueConstraint(err) {
			s.handleError(w, r, conflict(fmt.Errorf("project %q already exists", req.ProjectID)))
			return
		}
		s.handleError(w, r, storeFailure(err))
		return
	}

	// The creator always participates.
	memberIDs := append([]int64{user.ID}, req.UserIDs...)
	for _, id := range memberIDs {
		if err := s.store.AddParticipant(r.Context(), req.ProjectID, id); err != nil {
			s.handleError(w, r, storeFailure(err))
			return
		}
	}

	created, err := s.store.GetProject(r.Context(), req.ProjectID)
	if err != nil {
		s.handleError(w, r, storeFailure(err))
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectId")
	if _, err := s.requireProjectAccess(r, projectID); err != nil {
		s.handleError(w, r, err)
		return
	}

	project, err := s.store.GetProject(r.Context(), projectID)
	if err != nil {
		s.handleError(w, r, storeFailure(err))
		return
	}
	if project == nil {
		s.handleError(w, r, notFound(fmt.Errorf("project %q not found", projectID)))
		return
	}
	s.writeJSON(w, http.StatusOK, project)
}

func (s *Server) handleAddParticipant(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectId")
	if _, err := s.requireRole(r, models.RoleAdmin, models.RolePL); err != nil {
		s.handleError(w, r, err)
		return
	}

	userID, err := pathInt64(r, "userId")
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	target, err := s.store.GetUserByID(r.Context(), userID)
	if err != nil {
		s.handleError(w, r, storeFailure(err))
		return
	}
	if target == nil {
		s.handleError(w, r, notFound(fmt.Errorf("user %d not found", userID)))
		return
	}

	if err := s.store.AddParticipant(r.Context(), projectID, userID); err != nil {
		s.handleError(w, r, storeFailure(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListParticipants(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectId")
	if _, err := s.requireProjectAccess(r, projectID); err != nil {
		s.handleError(w, r, err)
		return
	}

	participants, err := s.store.ListParticipants(r.Context(), projectID)
	if err != nil {
		s.handleError(w, r, storeFailure(err))
		return
	}
	if participants == nil {
		participants = []models.Participant{}
	}
	s.writeJSON(w, http.StatusOK, participants)
}
