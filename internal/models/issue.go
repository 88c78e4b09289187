package models

import "time"

// Issue represents one tracked defect or task within a project.
//
// Exactly the timestamp fields for states the issue has passed through are
// set; the backend owns the authoritative copy and stamps them on each
// transition.
type Issue struct {
	ID          int64      `json:"id"`
	ProjectID   string     `json:"projectId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	Keywords    []string   `json:"keywords,omitempty"`
	DueDate     string     `json:"dueDate,omitempty"`
	AssignedTo  string     `json:"assignedTo,omitempty"`
	Reporter    *UserRef   `json:"reporter,omitempty"`
	Assignee    *UserRef   `json:"assignee,omitempty"`
	ReportedAt  time.Time  `json:"reportedAt"`
	FixedAt     *time.Time `json:"fixedAt,omitempty"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty"`
	ClosedAt    *time.Time `json:"closedAt,omitempty"`
	ReopenedAt  *time.Time `json:"reopenedAt,omitempty"`
}

// Comment belongs to exactly one issue. EditedAt is set on the first edit.
type Comment struct {
	CommentID int64      `json:"commentId"`
	Content   string     `json:"content"`
	Author    UserRef    `json:"user"`
	CreatedAt time.Time  `json:"createdAt"`
	EditedAt  *time.Time `json:"editedAt,omitempty"`
}

// UserRef is the embedded author/assignee reference used on issues and
// comments.
type UserRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role,omitempty"`
}

// Participant is a project member as returned by the participants listing.
type Participant struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// Project is the addressing context for issues.
type Project struct {
	ProjectID    string        `json:"projectId"`
	Title        string        `json:"title"`
	Description  string        `json:"description,omitempty"`
	StartDate    string        `json:"startDate,omitempty"`
	DueDate      string        `json:"dueDate,omitempty"`
	Participants []Participant `json:"participants,omitempty"`
}

// User is a tracker account.
type User struct {
	ID      int64  `json:"id"`
	LoginID string `json:"loginId"`
	Name    string `json:"name"`
	Role    Role   `json:"role"`
}
