package server

import (
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check.
	mux.HandleFunc("GET /health", s.handleHealth)

	// Accounts and sessions.
	mux.HandleFunc("POST /user/login", s.handleLogin)
	mux.HandleFunc("POST /user/logout", s.handleLogout)
	mux.HandleFunc("GET /user/all", s.handleListUsers)
	mux.HandleFunc("POST /user/new", s.handleCreateUser)

	// Projects.
	mux.HandleFunc("GET /project", s.handleListProjects)
	mux.HandleFunc("GET /project/all", s.handleListAllProjects)
	mux.HandleFunc("POST /project", s.handleCreateProject)
	mux.HandleFunc("GET /project/{projectId}", s.handleGetProject)
	mux.HandleFunc("POST /project/{projectId}/participant/{userId}", s.handleAddParticipant)
	mux.HandleFunc("GET /project/{projectId}/participants", s.handleListParticipants)

	// Issues.
	mux.HandleFunc("GET /project/{projectId}/issue", s.handleListIssues)
	mux.HandleFunc("POST /project/{projectId}/issue", s.handleCreateIssue)
	mux.HandleFunc("GET /project/{projectId}/issue/{issueId}", s.handleGetIssue)
	mux.HandleFunc("PUT /project/{projectId}/issue/{issueId}", s.handleUpdateIssue)

	// Lifecycle. The literal comment routes below take precedence over the
	// {action} wildcard.
	mux.HandleFunc("POST /project/{projectId}/issue/{issueId}/{action}", s.handleIssueAction)
	mux.HandleFunc("POST /project/{projectId}/issue/{issueId}/assign/{userId}", s.handleAssignIssue)

	// Comments.
	mux.HandleFunc("GET /project/{projectId}/issue/{issueId}/comment", s.handleListComments)
	mux.HandleFunc("POST /project/{projectId}/issue/{issueId}/comment", s.handleAddComment)
	mux.HandleFunc("PATCH /project/{projectId}/issue/{issueId}/comment/{commentId}", s.handleEditComment)
	mux.HandleFunc("DELETE /project/{projectId}/issue/{issueId}/comment/{commentId}", s.handleDeleteComment)

	return s.withRequestLogging(s.withAuth(mux))
}
