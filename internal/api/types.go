package api

// LoginRequest is the payload for POST /user/login.
type LoginRequest struct {
	LoginID  string `json:"loginId"`
	Password string `json:"password"`
}

// LoginResponse carries the session token and the acting role.
type LoginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
	Name  string `json:"name,omitempty"`
}

// ProjectCreateRequest defines the payload for creating a project.
type ProjectCreateRequest struct {
	ProjectID   string  `json:"projectId"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	StartDate   string  `json:"startDate,omitempty"`
	DueDate     string  `json:"dueDate,omitempty"`
	UserIDs     []int64 `json:"userIds"`
}

// IssueCreateRequest defines the payload for reporting a new issue.
type IssueCreateRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	DueDate     string   `json:"dueDate,omitempty"`
}

// CommentRequest is the payload for adding or editing a comment.
type CommentRequest struct {
	Content string `json:"content"`
}

// UserCreateRequest defines the payload for POST /user/new.
type UserCreateRequest struct {
	LoginID  string `json:"loginId"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// ErrorResponse is the generic JSON error wrapper used by the API.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
