package store

import (
	"context"
	"database/sql"
	"time"

	"itrack/internal/models"
)

const commentSelect = `
	SELECT c.id, c.content, c.created_at, c.edited_at, u.id, u.name, u.role
	FROM comments c
	JOIN users u ON u.id = c.author_id
`

// AddComment appends a comment to an issue.
func (s *Store) AddComment(ctx context.Context, issueID, authorID int64, content string, now time.Time) (*models.Comment, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (issue_id, author_id, content, created_at) VALUES (?, ?, ?, ?)
	`, issueID, authorID, content, dbFormatTime(now))
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetComment(ctx, issueID, id)
}

// GetComment returns one comment scoped to its issue, or nil.
func (s *Store) GetComment(ctx context.Context, issueID, commentID int64) (*models.Comment, error) {
	row := s.db.QueryRowContext(ctx, commentSelect+` WHERE c.issue_id = ? AND c.id = ? LIMIT 1`, issueID, commentID)
	comment, err := scanComment(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments returns an issue's comments in insertion order.
func (s *Store) ListComments(ctx context.Context, issueID int64) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, commentSelect+` WHERE c.issue_id = ? ORDER BY c.id`, issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		comment, err := scanComment(rows.Scan)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *comment)
	}
	return comments, rows.Err()
}

// UpdateComment replaces a comment's content and stamps the edit time.
func (s *Store) UpdateComment(ctx context.Context, issueID, commentID int64, content string, now time.Time) (*models.Comment, error) {
	_, err := s.db.ExecContext(ctx, `
		UPDATE comments SET content = ?, edited_at = ? WHERE issue_id = ? AND id = ?
	`, content, dbFormatTime(now), issueID, commentID)
	if err != nil {
		return nil, err
	}
	return s.GetComment(ctx, issueID, commentID)
}

// DeleteComment removes a comment.
func (s *Store) DeleteComment(ctx context.Context, issueID, commentID int64) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM comments WHERE issue_id = ? AND id = ?
	`, issueID, commentID)
	return err
}

func scanComment(scan func(dest ...any) error) (*models.Comment, error) {
	var comment models.Comment
	var createdAt string
	var editedAt sql.NullString
	var role string

	err := scan(&comment.CommentID, &comment.Content, &createdAt, &editedAt,
		&comment.Author.ID, &comment.Author.Name, &role)
	if err != nil {
		return nil, err
	}
	comment.Author.Role = models.Role(role)
	if comment.CreatedAt, err = dbParseTime(createdAt); err != nil {
		return nil, err
	}
	if comment.EditedAt, err = dbNullableTime(editedAt); err != nil {
		return nil, err
	}
	return &comment, nil
}
