package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"itrack/internal/models"
)

// IssueFilter narrows ListIssues results.
type IssueFilter struct {
	Query string
	Page  int
	Size  int
}

const issueSelect = `
	SELECT i.id, i.project_id, i.title, COALESCE(i.description, ''), i.status, i.priority,
	       COALESCE(i.keywords, ''), COALESCE(i.due_date, ''),
	       i.reporter_id, rep.name, rep.role,
	       i.assignee_id, asg.name, asg.role,
	       i.reported_at, i.fixed_at, i.resolved_at, i.closed_at, i.reopened_at
	FROM issues i
	LEFT JOIN users rep ON rep.id = i.reporter_id
	LEFT JOIN users asg ON asg.id = i.assignee_id
`

// CreateIssue inserts one issue and returns it with its assigned id.
func (s *Store) CreateIssue(ctx context.Context, issue models.Issue, reporterID int64) (*models.Issue, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO issues (project_id, title, description, status, priority, keywords, due_date, reporter_id, reported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, issue.ProjectID, issue.Title, issue.Description, string(issue.Status), string(issue.Priority),
		strings.Join(issue.Keywords, ","), issue.DueDate, reporterID, dbFormatTime(issue.ReportedAt))
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetIssue(ctx, issue.ProjectID, id)
}

// GetIssue returns one issue scoped to its project, or nil.
func (s *Store) GetIssue(ctx context.Context, projectID string, issueID int64) (*models.Issue, error) {
	row := s.db.QueryRowContext(ctx, issueSelect+` WHERE i.project_id = ? AND i.id = ? LIMIT 1`, projectID, issueID)
	issue, err := scanIssueRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return issue, nil
}

// ListIssues returns a project's issues, newest first.
func (s *Store) ListIssues(ctx context.Context, projectID string, filter IssueFilter) ([]models.Issue, error) {
	query := issueSelect + ` WHERE i.project_id = ?`
	args := []any{projectID}

	if q := strings.TrimSpace(filter.Query); q != "" {
		query += ` AND (i.title LIKE ? OR i.keywords LIKE ?)`
		pattern := "%" + q + "%"
		args = append(args, pattern, pattern)
	}
	query += ` ORDER BY i.id DESC`
	if filter.Size > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Size, filter.Page*filter.Size)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var issues []models.Issue
	for rows.Next() {
		issue, err := scanIssueRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		issues = append(issues, *issue)
	}
	return issues, rows.Err()
}

// UpdateIssue replaces the mutable fields of an issue (the full-update PUT).
func (s *Store) UpdateIssue(ctx context.Context, projectID string, issueID int64, issue models.Issue) (*models.Issue, error) {
	_, err := s.db.ExecContext(ctx, `
		UPDATE issues SET title = ?, description = ?, priority = ?, keywords = ?, due_date = ?
		WHERE project_id = ? AND id = ?
	`, issue.Title, issue.Description, string(issue.Priority), strings.Join(issue.Keywords, ","), issue.DueDate,
		projectID, issueID)
	if err != nil {
		return nil, err
	}
	return s.GetIssue(ctx, projectID, issueID)
}

// SetStatus applies a status transition and stamps the matching timestamp.
func (s *Store) SetStatus(ctx context.Context, projectID string, issueID int64, status models.Status, now time.Time) (*models.Issue, error) {
	column := ""
	switch status {
	case models.StatusFixed:
		column = "fixed_at"
	case models.StatusResolved:
		column = "resolved_at"
	case models.StatusClosed:
		column = "closed_at"
	case models.StatusReopened:
		column = "reopened_at"
	case models.StatusAssigned, models.StatusNew:
		// No dedicated timestamp column.
	default:
		return nil, fmt.Errorf("invalid status: %s", status)
	}

	query := `UPDATE issues SET status = ?`
	args := []any{string(status)}
	if column != "" {
		query += `, ` + column + ` = ?`
		args = append(args, dbFormatTime(now))
	}
	query += ` WHERE project_id = ? AND id = ?`
	args = append(args, projectID, issueID)

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, err
	}
	return s.GetIssue(ctx, projectID, issueID)
}

// AssignIssue sets the assignee and moves the issue to assigned.
func (s *Store) AssignIssue(ctx context.Context, projectID string, issueID, userID int64) (*models.Issue, error) {
	_, err := s.db.ExecContext(ctx, `
		UPDATE issues SET assignee_id = ?, status = ? WHERE project_id = ? AND id = ?
	`, userID, string(models.StatusAssigned), projectID, issueID)
	if err != nil {
		return nil, err
	}
	return s.GetIssue(ctx, projectID, issueID)
}

func scanIssueRow(scan func(dest ...any) error) (*models.Issue, error) {
	var issue models.Issue
	var status, priority, keywords string
	var reporterID, assigneeID sql.NullInt64
	var reporterName, reporterRole, assigneeName, assigneeRole sql.NullString
	var reportedAt string
	var fixedAt, resolvedAt, closedAt, reopenedAt sql.NullString

	err := scan(&issue.ID, &issue.ProjectID, &issue.Title, &issue.Description, &status, &priority,
		&keywords, &issue.DueDate,
		&reporterID, &reporterName, &reporterRole,
		&assigneeID, &assigneeName, &assigneeRole,
		&reportedAt, &fixedAt, &resolvedAt, &closedAt, &reopenedAt)
	if err != nil {
		return nil, err
	}

	issue.Status = models.Status(status)
	issue.Priority = models.Priority(priority)
	if keywords != "" {
		issue.Keywords = strings.Split(keywords, ",")
	}
	if reporterID.Valid {
		issue.Reporter = &models.UserRef{ID: reporterID.Int64, Name: reporterName.String, Role: models.Role(reporterRole.String)}
	}
	if assigneeID.Valid {
		issue.Assignee = &models.UserRef{ID: assigneeID.Int64, Name: assigneeName.String, Role: models.Role(assigneeRole.String)}
		issue.AssignedTo = assigneeName.String
	}
	if issue.ReportedAt, err = dbParseTime(reportedAt); err != nil {
		return nil, err
	}
	if issue.FixedAt, err = dbNullableTime(fixedAt); err != nil {
		return nil, err
	}
	if issue.ResolvedAt, err = dbNullableTime(resolvedAt); err != nil {
		return nil, err
	}
	if issue.ClosedAt, err = dbNullableTime(closedAt); err != nil {
		return nil, err
	}
	if issue.ReopenedAt, err = dbNullableTime(reopenedAt); err != nil {
		return nil, err
	}
	return &issue, nil
}
