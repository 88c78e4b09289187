package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"itrack/internal/api"
	"itrack/internal/models"
	"itrack/internal/store"
)

func (s *Server) handleListIssues(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectId")
	if _, err := s.requireProjectAccess(r, projectID); err != nil {
		s.handleError(w, r, err)
		return
	}

	filter := store.IssueFilter{Query: strings.TrimSpace(r.URL.Query().Get("q"))}
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

	issues, err := s.store.ListIssues(r.Context(), projectID, filter)
	if err != nil {
		s.handleError(w, r, storeFailure(err))
		return
	}
	if issues == nil {
		issues = []models.Issue{}
	}
	s.writeJSON(w, http.StatusOK, issues)
}

func (s *Server) handleCreateIssue(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectId")
	user, err := s.requireProjectAccess(r, projectID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	var req api.IssueCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		s.handleError(w, r, badRequest(fmt.Errorf("title is required")))
		return
	}

	priority := models.PriorityMajor
	if req.Priority != "" {
		priority, err = models.ParsePriority(req.Priority)
		if err != nil {
			s.handleError(w, r, badRequest(err))
			return
		}
	}

	issue := models.Issue{
		ProjectID:   projectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      models.StatusNew,
		Priority:    priority,
		Keywords:    req.Keywords,
		DueDate:     req.DueDate,
		ReportedAt:  time.Now().UTC(),
	}
	created, err := s.store.CreateIssue(r.Context(), issue, user.ID)
	if err != nil {
		s.handleError(w, r, storeFailure(err))
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetIssue(w http.ResponseWriter, r *http.Request) {
	issue, _, err := s.loadIssue(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, issue)
}

func (s *Server) handleUpdateIssue(w http.ResponseWriter, r *http.Request) {
	issue, _, err := s.loadIssue(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	var req models.Issue
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		s.handleError(w, r, badRequest(fmt.Errorf("title is required")))
		return
	}
	if req.Priority != "" && !models.IsValidPriority(req.Priority) {
		s.handleError(w, r, badRequest(fmt.Errorf("invalid priority: %q", req.Priority)))
		return
	}
	if req.Priority == "" {
		req.Priority = issue.Priority
	}

	updated, err := s.store.UpdateIssue(r.Context(), issue.ProjectID, issue.ID, req)
	if err != nil {
		s.handleError(w, r, storeFailure(err))
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

// handleIssueAction applies one lifecycle action (fix, resolve, close,
// reopen). Role and state gating happens here regardless of what the client
// already checked.
func (s *Server) handleIssueAction(w http.ResponseWriter, r *http.Request) {
	issue, user, err := s.loadIssue(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	action := r.PathValue("action")
	target, ok := statusForAction(action)
	if !ok {
		s.handleError(w, r, badRequest(fmt.Errorf("unknown action: %q", action)))
		return
	}

	if models.IsTerminal(issue.Status) {
		s.handleError(w, r, conflict(fmt.Errorf("issue is %s; no further transitions", issue.Status)))
		return
	}
	if !models.CanTransition(issue.Status, user.Role) {
		s.handleError(w, r, forbidden(fmt.Errorf("role %s may not transition a %s issue", user.Role, issue.Status)))
		return
	}
	if !models.CanReach(issue.Status, target) {
		s.handleError(w, r, conflict(fmt.Errorf("cannot move %s issue to %s", issue.Status, target)))
		return
	}

	updated, err := s.store.SetStatus(r.Context(), issue.ProjectID, issue.ID, target, time.Now().UTC())
	if err != nil {
		s.handleError(w, r, storeFailure(err))
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleAssignIssue(w http.ResponseWriter, r *http.Request) {
	issue, user, err := s.loadIssue(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	if !models.CanAssign(issue.Status, user.Role) {
		s.handleError(w, r, forbidden(fmt.Errorf("role %s may not assign a %s issue", user.Role, issue.Status)))
		return
	}

	userID, err := pathInt64(r, "userId")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	ok, err := s.store.IsParticipant(r.Context(), issue.ProjectID, userID)
	if err != nil {
		s.handleError(w, r, storeFailure(err))
		return
	}
	if !ok {
		s.handleError(w, r, badRequest(fmt.Errorf("user %d is not a participant of %s", userID, issue.ProjectID)))
		return
	}

	updated, err := s.store.AssignIssue(r.Context(), issue.ProjectID, issue.ID, userID)
	if err != nil {
		s.handleError(w, r, storeFailure(err))
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

// loadIssue resolves project access and the addressed issue in one step.
func (s *Server) loadIssue(r *http.Request) (*models.Issue, *store.UserRecord, error) {
	projectID := r.PathValue("projectId")
	user, err := s.requireProjectAccess(r, projectID)
	if err != nil {
		return nil, nil, err
	}

	issueID, err := pathInt64(r, "issueId")
	if err != nil {
		return nil, nil, err
	}
	issue, err := s.store.GetIssue(r.Context(), projectID, issueID)
	if err != nil {
		return nil, nil, storeFailure(err)
	}
	if issue == nil {
		return nil, nil, notFound(fmt.Errorf("issue %d not found in %s", issueID, projectID))
	}
	return issue, user, nil
}

func statusForAction(action string) (models.Status, bool) {
	switch action {
	case "fix":
		return models.StatusFixed, true
	case "resolve":
		return models.StatusResolved, true
	case "close":
		return models.StatusClosed, true
	case "reopen":
		return models.StatusReopened, true
	default:
		return "", false
	}
}
