package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"itrack/internal/api"
	"itrack/internal/models"
)

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	issue, _, err := s.loadIssue(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	comments, err := s.store.ListComments(r.Context(), issue.ID)
	if err != nil {
		s.handleError(w, r, storeFailure(err))
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	s.writeJSON(w, http.StatusOK, comments)
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	issue, user, err := s.loadIssue(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	var req api.CommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		s.handleError(w, r, badRequest(fmt.Errorf("comment content is required")))
		return
	}

	comment, err := s.store.AddComment(r.Context(), issue.ID, user.ID, content, time.Now().UTC())
	if err != nil {
		s.handleError(w, r, storeFailure(err))
		return
	}
	s.writeJSON(w, http.StatusCreated, comment)
}

func (s *Server) handleEditComment(w http.ResponseWriter, r *http.Request) {
	issue, comment, err := s.loadOwnedComment(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	var req api.CommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		s.handleError(w, r, badRequest(fmt.Errorf("comment content is required")))
		return
	}

	updated, err := s.store.UpdateComment(r.Context(), issue.ID, comment.CommentID, content, time.Now().UTC())
	if err != nil {
		s.handleError(w, r, storeFailure(err))
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	issue, comment, err := s.loadOwnedComment(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	if err := s.store.DeleteComment(r.Context(), issue.ID, comment.CommentID); err != nil {
		s.handleError(w, r, storeFailure(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// loadOwnedComment resolves the addressed comment and checks that the acting
// user may modify it. Only the author and admins may edit or delete.
func (s *Server) loadOwnedComment(r *http.Request) (*models.Issue, *models.Comment, error) {
	issue, user, err := s.loadIssue(r)
	if err != nil {
		return nil, nil, err
	}

	commentID, err := pathInt64(r, "commentId")
	if err != nil {
		return nil, nil, err
	}
	comment, err := s.store.GetComment(r.Context(), issue.ID, commentID)
	if err != nil {
		return nil, nil, storeFailure(err)
	}
	if comment == nil {
		return nil, nil, notFound(fmt.Errorf("comment %d not found on issue %d", commentID, issue.ID))
	}
	if comment.Author.ID != user.ID && user.Role != models.RoleAdmin {
		return nil, nil, forbidden(fmt.Errorf("comment %d belongs to another user", commentID))
	}
	return issue, comment, nil
}
