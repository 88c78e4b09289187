package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"itrack/internal/models"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	httpTimeoutEnvKey  = "ITRACK_HTTP_TIMEOUT"
)

// Client is a simple HTTP client for the tracker API. The bearer token is
// attached in exactly one place; callers never set auth headers themselves.
type Client struct {
	baseURL   string
	http      *http.Client
	authToken string
}

// NewClient creates a new API client. token may be empty for the login call.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: httpTimeoutFromEnv()},
		authToken: strings.TrimSpace(token),
	}
}

// Ping checks whether the API server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

// Login exchanges credentials for a session token and role.
func (c *Client) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	var resp LoginResponse
	err := c.do(ctx, http.MethodPost, "/user/login", nil, req, &resp)
	return resp, err
}

// Logout revokes the current session token server side.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/user/logout", nil, nil, nil)
}

// ListProjects lists the caller's projects; admins list every project.
func (c *Client) ListProjects(ctx context.Context, all bool) ([]models.Project, error) {
	path := "/project"
	if all {
		path = "/project/all"
	}
	var resp []models.Project
	err := c.do(ctx, http.MethodGet, path, nil, nil, &resp)
	return resp, err
}

func (c *Client) GetProject(ctx context.Context, projectID string) (models.Project, error) {
	var resp models.Project
	err := c.do(ctx, http.MethodGet, "/project/"+url.PathEscape(projectID), nil, nil, &resp)
	return resp, err
}

func (c *Client) CreateProject(ctx context.Context, req ProjectCreateRequest) (models.Project, error) {
	var resp models.Project
	err := c.do(ctx, http.MethodPost, "/project", nil, req, &resp)
	return resp, err
}

func (c *Client) AddParticipant(ctx context.Context, projectID string, userID int64) error {
	return c.do(ctx, http.MethodPost, c.projectPath(projectID, "participant", strconv.FormatInt(userID, 10)), nil, struct{}{}, nil)
}

// ListParticipants lists project members; dev recommendations are filtered
// client-side from this listing.
func (c *Client) ListParticipants(ctx context.Context, projectID string) ([]models.Participant, error) {
	var resp []models.Participant
	err := c.do(ctx, http.MethodGet, c.projectPath(projectID, "participants"), nil, nil, &resp)
	return resp, err
}

func (c *Client) ListIssues(ctx context.Context, projectID string, query url.Values) ([]models.Issue, error) {
	var resp []models.Issue
	err := c.do(ctx, http.MethodGet, c.projectPath(projectID, "issue"), query, nil, &resp)
	return resp, err
}

func (c *Client) CreateIssue(ctx context.Context, projectID string, req IssueCreateRequest) (models.Issue, error) {
	var resp models.Issue
	err := c.do(ctx, http.MethodPost, c.projectPath(projectID, "issue"), nil, req, &resp)
	return resp, err
}

func (c *Client) GetIssue(ctx context.Context, projectID string, issueID int64) (models.Issue, error) {
	var resp models.Issue
	err := c.do(ctx, http.MethodGet, c.issuePath(projectID, issueID), nil, nil, &resp)
	return resp, err
}

// UpdateIssue replaces the full issue record; used for priority changes.
func (c *Client) UpdateIssue(ctx context.Context, projectID string, issueID int64, issue models.Issue) (models.Issue, error) {
	var resp models.Issue
	err := c.do(ctx, http.MethodPut, c.issuePath(projectID, issueID), nil, issue, &resp)
	return resp, err
}

// ApplyAction invokes a named status-transition action (resolve, reopen,
// fix, close) on an issue.
func (c *Client) ApplyAction(ctx context.Context, projectID string, issueID int64, action string) (models.Issue, error) {
	var resp models.Issue
	err := c.do(ctx, http.MethodPost, c.issuePath(projectID, issueID)+"/"+url.PathEscape(action), nil, nil, &resp)
	return resp, err
}

func (c *Client) AssignIssue(ctx context.Context, projectID string, issueID int64, userID int64) (models.Issue, error) {
	var resp models.Issue
	err := c.do(ctx, http.MethodPost, c.issuePath(projectID, issueID)+"/assign/"+strconv.FormatInt(userID, 10), nil, nil, &resp)
	return resp, err
}

func (c *Client) ListComments(ctx context.Context, projectID string, issueID int64) ([]models.Comment, error) {
	var resp []models.Comment
	err := c.do(ctx, http.MethodGet, c.issuePath(projectID, issueID)+"/comment", nil, nil, &resp)
	return resp, err
}

func (c *Client) AddComment(ctx context.Context, projectID string, issueID int64, req CommentRequest) (models.Comment, error) {
	var resp models.Comment
	err := c.do(ctx, http.MethodPost, c.issuePath(projectID, issueID)+"/comment", nil, req, &resp)
	return resp, err
}

func (c *Client) EditComment(ctx context.Context, projectID string, issueID, commentID int64, req CommentRequest) (models.Comment, error) {
	var resp models.Comment
	err := c.do(ctx, http.MethodPatch, c.commentPath(projectID, issueID, commentID), nil, req, &resp)
	return resp, err
}

func (c *Client) DeleteComment(ctx context.Context, projectID string, issueID, commentID int64) error {
	return c.do(ctx, http.MethodDelete, c.commentPath(projectID, issueID, commentID), nil, nil, nil)
}

// ListUsers lists accounts; query supports q, role, page and size.
func (c *Client) ListUsers(ctx context.Context, query url.Values) ([]models.User, error) {
	var resp []models.User
	err := c.do(ctx, http.MethodGet, "/user/all", query, nil, &resp)
	return resp, err
}

func (c *Client) CreateUser(ctx context.Context, req UserCreateRequest) (models.User, error) {
	var resp models.User
	err := c.do(ctx, http.MethodPost, "/user/new", nil, req, &resp)
	return resp, err
}

func (c *Client) projectPath(projectID string, parts ...string) string {
	path := "/project/" + url.PathEscape(projectID)
	for _, part := range parts {
		path += "/" + part
	}
	return path
}

func (c *Client) issuePath(projectID string, issueID int64) string {
	return c.projectPath(projectID, "issue", strconv.FormatInt(issueID, 10))
}

func (c *Client) commentPath(projectID string, issueID, commentID int64) string {
	return c.issuePath(projectID, issueID) + "/comment/" + strconv.FormatInt(commentID, 10)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setAuthHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
		apiErr.Code = errResp.Code
		apiErr.Message = errResp.Error
		return apiErr
	}
	apiErr.Message = fmt.Sprintf("api error: %s", resp.Status)
	return apiErr
}

func (c *Client) setAuthHeader(req *http.Request) {
	if c.authToken == "" || req == nil {
		return
	}
	req.Header.Set("Authorization", "Bearer "+c.authToken)
}

func httpTimeoutFromEnv() time.Duration {
	value := strings.TrimSpace(os.Getenv(httpTimeoutEnvKey))
	if value == "" {
		return defaultHTTPTimeout
	}

	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return defaultHTTPTimeout
}
