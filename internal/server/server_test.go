package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"itrack/internal/api"
	internalauth "itrack/internal/auth"
	"itrack/internal/models"
	"itrack/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "itrack-test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New("127.0.0.1:0", st, logger)
}

func seedAccount(t *testing.T, srv *Server, loginID, password string, role models.Role) *store.UserRecord {
	t.Helper()
	hash, err := internalauth.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user, err := srv.store.CreateUser(context.Background(), loginID, hash, loginID, role, time.Now())
	if err != nil {
		t.Fatalf("create user %s: %v", loginID, err)
	}
	return user
}

func loginToken(t *testing.T, h http.Handler, loginID, password string) string {
	t.Helper()
	body, _ := json.Marshal(api.LoginRequest{LoginID: loginID, Password: password})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/user/login", bytes.NewReader(body)))
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d (%s)", loginID, w.Code, w.Body.String())
	}
	var resp api.LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.Token
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeInto(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

// seedProjectFixture creates a project with one pl, one dev and one tester
// and returns their tokens keyed by role name.
func seedProjectFixture(t *testing.T, srv *Server, h http.Handler) map[string]string {
	t.Helper()
	seedAccount(t, srv, "root", "admin-pass-1", models.RoleAdmin)
	seedAccount(t, srv, "pl", "pl-pass-123", models.RolePL)
	dev := seedAccount(t, srv, "dev", "dev-pass-123", models.RoleDev)
	tester := seedAccount(t, srv, "tester", "tester-pass-1", models.RoleTester)

	tokens := map[string]string{
		"admin":  loginToken(t, h, "root", "admin-pass-1"),
		"pl":     loginToken(t, h, "pl", "pl-pass-123"),
		"dev":    loginToken(t, h, "dev", "dev-pass-123"),
		"tester": loginToken(t, h, "tester", "tester-pass-1"),
	}

	w := doJSON(t, h, http.MethodPost, "/project", tokens["pl"], api.ProjectCreateRequest{
		ProjectID: "proj-a",
		Title:     "Project A",
		UserIDs:   []int64{dev.ID, tester.ID},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create project: expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	return tokens
}

func reportIssue(t *testing.T, h http.Handler, token string) models.Issue {
	t.Helper()
	w := doJSON(t, h, http.MethodPost, "/project/proj-a/issue", token, api.IssueCreateRequest{
		Title:    "crash on save",
		Priority: "major",
		Keywords: []string{"crash"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create issue: expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	var issue models.Issue
	decodeInto(t, w, &issue)
	return issue
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv := newTestServer(t)
	seedAccount(t, srv, "kim", "secret-pass-1", models.RoleDev)
	h := srv.routes()

	body, _ := json.Marshal(api.LoginRequest{LoginID: "kim", Password: "wrong-pass"})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/user/login", bytes.NewReader(body)))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d (%s)", w.Code, w.Body.String())
	}

	var resp api.ErrorResponse
	decodeInto(t, w, &resp)
	if resp.Code != "unauthorized" {
		t.Fatalf("expected unauthorized code, got %q", resp.Code)
	}
}

func TestRequestsWithoutTokenRejected(t *testing.T) {
	srv := newTestServer(t)
	h := srv.routes()

	w := doJSON(t, h, http.MethodGet, "/project", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d (%s)", w.Code, w.Body.String())
	}

	// Health stays open.
	w = doJSON(t, h, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected health 200, got %d", w.Code)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	srv := newTestServer(t)
	seedAccount(t, srv, "kim", "secret-pass-1", models.RoleDev)
	h := srv.routes()
	token := loginToken(t, h, "kim", "secret-pass-1")

	if w := doJSON(t, h, http.MethodGet, "/project", token, nil); w.Code != http.StatusOK {
		t.Fatalf("expected 200 before logout, got %d (%s)", w.Code, w.Body.String())
	}
	if w := doJSON(t, h, http.MethodPost, "/user/logout", token, nil); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 on logout, got %d (%s)", w.Code, w.Body.String())
	}
	if w := doJSON(t, h, http.MethodGet, "/project", token, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d (%s)", w.Code, w.Body.String())
	}
}

func TestProjectVisibilityByRole(t *testing.T) {
	srv := newTestServer(t)
	h := srv.routes()
	tokens := seedProjectFixture(t, srv, h)

	seedAccount(t, srv, "outsider", "outsider-pw-1", models.RoleDev)
	outsiderToken := loginToken(t, h, "outsider", "outsider-pw-1")

	var mine []models.Project
	w := doJSON(t, h, http.MethodGet, "/project", outsiderToken, nil)
	decodeInto(t, w, &mine)
	if len(mine) != 0 {
		t.Fatalf("expected no projects for outsider, got %v", mine)
	}

	if w := doJSON(t, h, http.MethodGet, "/project/all", outsiderToken, nil); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin /project/all, got %d", w.Code)
	}
	if w := doJSON(t, h, http.MethodGet, "/project/proj-a", outsiderToken, nil); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-participant project get, got %d", w.Code)
	}

	var all []models.Project
	w = doJSON(t, h, http.MethodGet, "/project/all", tokens["admin"], nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected admin /project/all 200, got %d (%s)", w.Code, w.Body.String())
	}
	decodeInto(t, w, &all)
	if len(all) != 1 || all[0].ProjectID != "proj-a" {
		t.Fatalf("expected proj-a, got %v", all)
	}
}

func TestIssueLifecycleHappyPath(t *testing.T) {
	srv := newTestServer(t)
	h := srv.routes()
	tokens := seedProjectFixture(t, srv, h)
	issue := reportIssue(t, h, tokens["tester"])

	if issue.Status != models.StatusNew || issue.Reporter == nil {
		t.Fatalf("unexpected fresh issue %+v", issue)
	}
	base := fmt.Sprintf("/project/proj-a/issue/%d", issue.ID)

	// pl assigns to the dev.
	var dev models.User
	var participants []models.Participant
	w := doJSON(t, h, http.MethodGet, "/project/proj-a/participants", tokens["pl"], nil)
	decodeInto(t, w, &participants)
	for _, p := range participants {
		if p.Role == models.RoleDev {
			dev = models.User{ID: p.ID, Name: p.Name}
		}
	}
	if dev.ID == 0 {
		t.Fatalf("no dev participant in %v", participants)
	}

	var assigned models.Issue
	w = doJSON(t, h, http.MethodPost, fmt.Sprintf("%s/assign/%d", base, dev.ID), tokens["pl"], nil)
	if w.Code != http.StatusOK {
		t.Fatalf("assign: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	decodeInto(t, w, &assigned)
	if assigned.Status != models.StatusAssigned || assigned.AssignedTo != "dev" {
		t.Fatalf("unexpected assigned issue %+v", assigned)
	}

	// dev fixes.
	var fixed models.Issue
	w = doJSON(t, h, http.MethodPost, base+"/fix", tokens["dev"], nil)
	if w.Code != http.StatusOK {
		t.Fatalf("fix: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	decodeInto(t, w, &fixed)
	if fixed.Status != models.StatusFixed || fixed.FixedAt == nil {
		t.Fatalf("unexpected fixed issue %+v", fixed)
	}

	// pl resolves then closes.
	var resolved models.Issue
	w = doJSON(t, h, http.MethodPost, base+"/resolve", tokens["pl"], nil)
	decodeInto(t, w, &resolved)
	if resolved.Status != models.StatusResolved || resolved.ResolvedAt == nil {
		t.Fatalf("unexpected resolved issue %+v", resolved)
	}

	var closed models.Issue
	w = doJSON(t, h, http.MethodPost, base+"/close", tokens["pl"], nil)
	decodeInto(t, w, &closed)
	if closed.Status != models.StatusClosed || closed.ClosedAt == nil {
		t.Fatalf("unexpected closed issue %+v", closed)
	}

	// Closed is terminal.
	if w := doJSON(t, h, http.MethodPost, base+"/reopen", tokens["pl"], nil); w.Code != http.StatusConflict {
		t.Fatalf("expected 409 on closed issue, got %d (%s)", w.Code, w.Body.String())
	}
}

func TestTransitionGating(t *testing.T) {
	srv := newTestServer(t)
	h := srv.routes()
	tokens := seedProjectFixture(t, srv, h)
	issue := reportIssue(t, h, tokens["tester"])
	base := fmt.Sprintf("/project/proj-a/issue/%d", issue.ID)

	// A dev may not touch an unassigned issue.
	if w := doJSON(t, h, http.MethodPost, base+"/fix", tokens["dev"], nil); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for dev on new issue, got %d (%s)", w.Code, w.Body.String())
	}
	// A tester may never transition.
	if w := doJSON(t, h, http.MethodPost, base+"/close", tokens["tester"], nil); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for tester, got %d (%s)", w.Code, w.Body.String())
	}
	// Unknown actions are rejected.
	if w := doJSON(t, h, http.MethodPost, base+"/escalate", tokens["pl"], nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown action, got %d (%s)", w.Code, w.Body.String())
	}
	// A dev may not assign.
	if w := doJSON(t, h, http.MethodPost, base+"/assign/1", tokens["dev"], nil); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for dev assign, got %d (%s)", w.Code, w.Body.String())
	}
}

func TestCommentOwnership(t *testing.T) {
	srv := newTestServer(t)
	h := srv.routes()
	tokens := seedProjectFixture(t, srv, h)
	issue := reportIssue(t, h, tokens["tester"])
	base := fmt.Sprintf("/project/proj-a/issue/%d/comment", issue.ID)

	var comment models.Comment
	w := doJSON(t, h, http.MethodPost, base, tokens["dev"], api.CommentRequest{Content: "looking into it"})
	if w.Code != http.StatusCreated {
		t.Fatalf("add comment: expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	decodeInto(t, w, &comment)
	if comment.Author.Name != "dev" || comment.EditedAt != nil {
		t.Fatalf("unexpected comment %+v", comment)
	}

	target := fmt.Sprintf("%s/%d", base, comment.CommentID)

	// Another participant may not edit or delete it.
	if w := doJSON(t, h, http.MethodPatch, target, tokens["tester"], api.CommentRequest{Content: "hijack"}); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 editing foreign comment, got %d (%s)", w.Code, w.Body.String())
	}
	if w := doJSON(t, h, http.MethodDelete, target, tokens["tester"], nil); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 deleting foreign comment, got %d (%s)", w.Code, w.Body.String())
	}

	// The author may.
	var edited models.Comment
	w = doJSON(t, h, http.MethodPatch, target, tokens["dev"], api.CommentRequest{Content: "root caused"})
	if w.Code != http.StatusOK {
		t.Fatalf("edit comment: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	decodeInto(t, w, &edited)
	if edited.Content != "root caused" || edited.EditedAt == nil {
		t.Fatalf("unexpected edited comment %+v", edited)
	}

	// Admins may moderate.
	if w := doJSON(t, h, http.MethodDelete, target, tokens["admin"], nil); w.Code != http.StatusNoContent {
		t.Fatalf("admin delete: expected 204, got %d (%s)", w.Code, w.Body.String())
	}
	if w := doJSON(t, h, http.MethodDelete, target, tokens["admin"], nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing comment, got %d (%s)", w.Code, w.Body.String())
	}
}

func TestUserAdminRoutes(t *testing.T) {
	srv := newTestServer(t)
	h := srv.routes()
	tokens := seedProjectFixture(t, srv, h)

	// Only admins create accounts.
	newUser := api.UserCreateRequest{LoginID: "new.dev", Password: "longenough1", Name: "New Dev", Role: "dev"}
	if w := doJSON(t, h, http.MethodPost, "/user/new", tokens["pl"], newUser); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for pl creating user, got %d (%s)", w.Code, w.Body.String())
	}

	w := doJSON(t, h, http.MethodPost, "/user/new", tokens["admin"], newUser)
	if w.Code != http.StatusCreated {
		t.Fatalf("create user: expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	var created models.User
	decodeInto(t, w, &created)
	if created.LoginID != "new.dev" || created.Role != models.RoleDev {
		t.Fatalf("unexpected created user %+v", created)
	}

	// Duplicate login ids conflict.
	if w := doJSON(t, h, http.MethodPost, "/user/new", tokens["admin"], newUser); w.Code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate login id, got %d (%s)", w.Code, w.Body.String())
	}

	var devs []models.User
	w = doJSON(t, h, http.MethodGet, "/user/all?role=dev", tokens["admin"], nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list users: expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	decodeInto(t, w, &devs)
	if len(devs) != 2 {
		t.Fatalf("expected 2 devs, got %v", devs)
	}
}
