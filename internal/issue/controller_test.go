package issue

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"itrack/internal/api"
	"itrack/internal/models"
)

// testBackend serves one issue's read endpoints and records every mutating
// request so tests can assert that rejected operations never dispatch.
type testBackend struct {
	srv          *httptest.Server
	issue        models.Issue
	comments     []models.Comment
	participants []models.Participant

	mutations  atomic.Int64
	failWrites bool
}

func newTestBackend(t *testing.T, issue models.Issue, comments []models.Comment, participants []models.Participant) *testBackend {
	t.Helper()
	b := &testBackend{issue: issue, comments: comments, participants: participants}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /project/{projectId}/issue/{issueId}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, b.issue)
	})
	mux.HandleFunc("GET /project/{projectId}/issue/{issueId}/comment", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, b.comments)
	})
	mux.HandleFunc("GET /project/{projectId}/participants", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, b.participants)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			http.NotFound(w, r)
			return
		}
		b.mutations.Add(1)
		if b.failWrites {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "backend failure", Code: "internal"})
			return
		}
		b.handleMutation(t, w, r)
	})

	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)
	return b
}

func (b *testBackend) handleMutation(t *testing.T, w http.ResponseWriter, r *http.Request) {
	t.Helper()
	switch {
	case r.Method == http.MethodPost && pathEndsWith(r, "/comment"):
		var req api.CommentRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		created := models.Comment{
			CommentID: int64(len(b.comments) + 100),
			Content:   req.Content,
			Author:    models.UserRef{ID: 1, Name: "Lee", Role: models.RoleTester},
			CreatedAt: time.Now().UTC(),
		}
		b.comments = append(b.comments, created)
		writeJSON(t, w, created)
	case r.Method == http.MethodPatch:
		var req api.CommentRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		now := time.Now().UTC()
		writeJSON(t, w, models.Comment{CommentID: 2, Content: req.Content, EditedAt: &now, CreatedAt: now})
	case r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	default:
		// Status actions, assignment, and the full-issue PUT all return
		// the updated issue.
		writeJSON(t, w, b.issue)
	}
}

func pathEndsWith(r *http.Request, suffix string) bool {
	path := r.URL.Path
	return len(path) >= len(suffix) && path[len(path)-len(suffix):] == suffix
}

func writeJSON(t *testing.T, w http.ResponseWriter, payload any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		t.Fatalf("encode response: %v", err)
	}
}

func loadedController(t *testing.T, b *testBackend, role models.Role) *Controller {
	t.Helper()
	client := api.NewClient(b.srv.URL, "test-token")
	ctrl := NewController(client, "p1", b.issue.ID, role)
	if err := ctrl.Load(context.Background()); err != nil {
		t.Fatalf("load controller: %v", err)
	}
	return ctrl
}

func baseIssue(status models.Status) models.Issue {
	return models.Issue{
		ID:         42,
		ProjectID:  "p1",
		Title:      "crash on save",
		Status:     status,
		Priority:   models.PriorityMajor,
		ReportedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestClosedIssueRejectsTransitionBeforeDispatch(t *testing.T) {
	b := newTestBackend(t, baseIssue(models.StatusClosed), nil, nil)
	ctrl := loadedController(t, b, models.RolePL)

	if got := ctrl.AvailableTransitions(); len(got) != 0 {
		t.Fatalf("expected no transition control on closed issue, got %v", got)
	}
	err := ctrl.Transition(context.Background(), models.StatusReopened)
	if !errors.Is(err, ErrTerminal) {
		t.Fatalf("expected ErrTerminal, got %v", err)
	}
	if n := b.mutations.Load(); n != 0 {
		t.Fatalf("expected no network dispatch, saw %d mutating requests", n)
	}
}

func TestTransitionControlGating(t *testing.T) {
	statuses := []models.Status{
		models.StatusNew, models.StatusAssigned, models.StatusFixed,
		models.StatusResolved, models.StatusClosed, models.StatusReopened,
	}
	roles := []models.Role{models.RoleAdmin, models.RolePL, models.RoleDev, models.RoleTester}

	for _, status := range statuses {
		for _, role := range roles {
			b := newTestBackend(t, baseIssue(status), nil, nil)
			ctrl := loadedController(t, b, role)

			offered := len(ctrl.AvailableTransitions()) > 0
			want := (status == models.StatusAssigned && role == models.RoleDev) ||
				(status != models.StatusAssigned && status != models.StatusClosed && role == models.RolePL)
			if offered != want {
				t.Fatalf("status %s role %s: control offered = %v, want %v", status, role, offered, want)
			}
		}
	}
}

func TestDevMayNotActOnNewIssue(t *testing.T) {
	b := newTestBackend(t, baseIssue(models.StatusNew), nil, nil)
	ctrl := loadedController(t, b, models.RoleDev)

	if got := ctrl.AvailableTransitions(); len(got) != 0 {
		t.Fatalf("expected no transition control for dev on new issue, got %v", got)
	}
	if err := ctrl.Transition(context.Background(), models.StatusClosed); !errors.Is(err, ErrNotPermitted) {
		t.Fatalf("expected ErrNotPermitted, got %v", err)
	}
	if n := b.mutations.Load(); n != 0 {
		t.Fatalf("expected no dispatch, saw %d mutating requests", n)
	}
}

func TestTransitionTargetWithoutActionIsRejected(t *testing.T) {
	b := newTestBackend(t, baseIssue(models.StatusReopened), nil, nil)
	ctrl := loadedController(t, b, models.RolePL)

	// reopened -> assigned is in the transition table but has no named
	// action; assignment must go through the assign operation.
	err := ctrl.Transition(context.Background(), models.StatusAssigned)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if n := b.mutations.Load(); n != 0 {
		t.Fatalf("expected no dispatch, saw %d mutating requests", n)
	}
}

func TestTransitionReconcilesStatus(t *testing.T) {
	b := newTestBackend(t, baseIssue(models.StatusFixed), nil, nil)
	closedAt := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	updated := baseIssue(models.StatusResolved)
	updated.ResolvedAt = &closedAt
	b.issue = updated

	ctrl := loadedController(t, b, models.RolePL)
	// Reset the cached copy to the pre-transition state.
	pre := baseIssue(models.StatusFixed)
	ctrl.issue = &pre

	if err := ctrl.Transition(context.Background(), models.StatusResolved); err != nil {
		t.Fatalf("transition: %v", err)
	}
	got, _ := ctrl.Issue()
	if got.Status != models.StatusResolved {
		t.Fatalf("expected resolved, got %s", got.Status)
	}
	if got.ResolvedAt == nil {
		t.Fatal("expected resolvedAt to be set after transition")
	}
}

func TestTransitionFailureLeavesStateUnchanged(t *testing.T) {
	b := newTestBackend(t, baseIssue(models.StatusFixed), nil, nil)
	b.failWrites = true
	ctrl := loadedController(t, b, models.RolePL)

	err := ctrl.Transition(context.Background(), models.StatusResolved)
	if err == nil {
		t.Fatal("expected backend failure")
	}
	got, _ := ctrl.Issue()
	if got.Status != models.StatusFixed {
		t.Fatalf("expected status unchanged on failure, got %s", got.Status)
	}
	if got.ResolvedAt != nil {
		t.Fatal("expected no timestamp stamped on failure")
	}
}

func TestWhitespaceCommentMakesNoCall(t *testing.T) {
	existing := []models.Comment{{CommentID: 1, Content: "first"}}
	b := newTestBackend(t, baseIssue(models.StatusNew), existing, nil)
	ctrl := loadedController(t, b, models.RoleTester)

	_, err := ctrl.AddComment(context.Background(), "  ")
	if !errors.Is(err, ErrEmptyComment) {
		t.Fatalf("expected ErrEmptyComment, got %v", err)
	}
	if n := b.mutations.Load(); n != 0 {
		t.Fatalf("expected no backend call, saw %d", n)
	}
	if got := ctrl.Comments(); len(got) != 1 {
		t.Fatalf("expected comment list unchanged, got %d entries", len(got))
	}
}

func TestAddCommentAppends(t *testing.T) {
	b := newTestBackend(t, baseIssue(models.StatusNew), nil, nil)
	ctrl := loadedController(t, b, models.RoleTester)

	created, err := ctrl.AddComment(context.Background(), "  repro attached  ")
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}
	if created.Content != "repro attached" {
		t.Fatalf("expected trimmed content, got %q", created.Content)
	}
	got := ctrl.Comments()
	if len(got) != 1 || got[0].CommentID != created.CommentID {
		t.Fatalf("expected appended comment, got %v", got)
	}
}

func TestDeleteCommentByID(t *testing.T) {
	comments := []models.Comment{
		{CommentID: 1, Content: "first"},
		{CommentID: 2, Content: "second"},
	}
	b := newTestBackend(t, baseIssue(models.StatusNew), comments, nil)
	ctrl := loadedController(t, b, models.RoleTester)

	if err := ctrl.DeleteComment(context.Background(), 1); err != nil {
		t.Fatalf("delete comment: %v", err)
	}
	got := ctrl.Comments()
	if len(got) != 1 || got[0].CommentID != 2 {
		t.Fatalf("expected only comment 2 to remain, got %v", got)
	}

	if err := ctrl.DeleteComment(context.Background(), 99); !errors.Is(err, ErrUnknownComment) {
		t.Fatalf("expected ErrUnknownComment, got %v", err)
	}
	if n := b.mutations.Load(); n != 1 {
		t.Fatalf("expected exactly one dispatch, saw %d", n)
	}
}

func TestEditCommentStampsEditTime(t *testing.T) {
	comments := []models.Comment{{CommentID: 2, Content: "old"}}
	b := newTestBackend(t, baseIssue(models.StatusNew), comments, nil)
	ctrl := loadedController(t, b, models.RoleTester)

	updated, err := ctrl.EditComment(context.Background(), 2, "new text")
	if err != nil {
		t.Fatalf("edit comment: %v", err)
	}
	if updated.Content != "new text" || updated.EditedAt == nil {
		t.Fatalf("expected edited content with editedAt, got %+v", updated)
	}
	got, ok := ctrl.CommentByID(2)
	if !ok || got.Content != "new text" {
		t.Fatalf("expected cached comment updated, got %+v", got)
	}
}

func TestAssignUpdatesAssignee(t *testing.T) {
	participants := []models.Participant{
		{ID: 7, Name: "Kim", Role: models.RoleDev},
		{ID: 8, Name: "Park", Role: models.RoleTester},
	}
	issue := baseIssue(models.StatusNew)
	assigned := issue
	assigned.Status = models.StatusNew
	assigned.AssignedTo = "Kim"
	assigned.Assignee = &models.UserRef{ID: 7, Name: "Kim", Role: models.RoleDev}

	b := newTestBackend(t, issue, nil, participants)
	b.issue = assigned
	ctrl := loadedController(t, b, models.RolePL)
	pre := baseIssue(models.StatusNew)
	ctrl.issue = &pre

	if !ctrl.CanAssign() {
		t.Fatal("expected assignment control for pl on new issue")
	}
	if err := ctrl.Assign(context.Background(), 7); err != nil {
		t.Fatalf("assign: %v", err)
	}
	got, _ := ctrl.Issue()
	if got.AssignedTo != "Kim" {
		t.Fatalf("expected assignedTo Kim, got %q", got.AssignedTo)
	}
}

func TestAssignFailureLeavesAssigneeUnchanged(t *testing.T) {
	participants := []models.Participant{{ID: 7, Name: "Kim", Role: models.RoleDev}}
	b := newTestBackend(t, baseIssue(models.StatusNew), nil, participants)
	b.failWrites = true
	ctrl := loadedController(t, b, models.RolePL)

	err := ctrl.Assign(context.Background(), 7)
	if err == nil {
		t.Fatal("expected backend failure")
	}
	got, _ := ctrl.Issue()
	if got.AssignedTo != "" {
		t.Fatalf("expected assignedTo unchanged, got %q", got.AssignedTo)
	}
}

func TestAssignGating(t *testing.T) {
	participants := []models.Participant{{ID: 7, Name: "Kim", Role: models.RoleDev}}

	b := newTestBackend(t, baseIssue(models.StatusAssigned), nil, participants)
	ctrl := loadedController(t, b, models.RolePL)
	if err := ctrl.Assign(context.Background(), 7); !errors.Is(err, ErrAssignmentNotAllowed) {
		t.Fatalf("expected ErrAssignmentNotAllowed on assigned issue, got %v", err)
	}

	b2 := newTestBackend(t, baseIssue(models.StatusNew), nil, participants)
	ctrl2 := loadedController(t, b2, models.RoleDev)
	if err := ctrl2.Assign(context.Background(), 7); !errors.Is(err, ErrAssignmentNotAllowed) {
		t.Fatalf("expected ErrAssignmentNotAllowed for dev, got %v", err)
	}
	if n := b.mutations.Load() + b2.mutations.Load(); n != 0 {
		t.Fatalf("expected no dispatch, saw %d", n)
	}
}

func TestRecommendedDevelopers(t *testing.T) {
	participants := []models.Participant{
		{ID: 1, Name: "A", Role: models.RoleDev},
		{ID: 2, Name: "B", Role: models.RoleTester},
		{ID: 3, Name: "C", Role: models.RoleDev},
		{ID: 4, Name: "D", Role: models.RoleDev},
		{ID: 5, Name: "E", Role: models.RoleDev},
	}
	b := newTestBackend(t, baseIssue(models.StatusNew), nil, participants)
	ctrl := loadedController(t, b, models.RolePL)

	devs := ctrl.RecommendedDevelopers()
	if len(devs) != 3 {
		t.Fatalf("expected 3 recommendations, got %d", len(devs))
	}
	for _, dev := range devs {
		if dev.Role != models.RoleDev {
			t.Fatalf("expected only dev roles, got %s", dev.Role)
		}
	}
}

func TestSetPriorityRoundTrips(t *testing.T) {
	issue := baseIssue(models.StatusNew)
	updated := issue
	updated.Priority = models.PriorityBlocker
	b := newTestBackend(t, issue, nil, nil)
	b.issue = updated

	ctrl := loadedController(t, b, models.RoleTester)
	pre := baseIssue(models.StatusNew)
	ctrl.issue = &pre

	if err := ctrl.SetPriority(context.Background(), models.PriorityBlocker); err != nil {
		t.Fatalf("set priority: %v", err)
	}
	got, _ := ctrl.Issue()
	if got.Priority != models.PriorityBlocker {
		t.Fatalf("expected blocker priority, got %s", got.Priority)
	}
}
