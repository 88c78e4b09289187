package store

import (
	"context"
	"database/sql"
	"time"

	"itrack/internal/models"
)

// CreateProject inserts one project.
func (s *Store) CreateProject(ctx context.Context, project models.Project, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (project_id, title, description, start_date, due_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, project.ProjectID, project.Title, project.Description, project.StartDate, project.DueDate, dbFormatTime(now))
	return err
}

// GetProject returns a project with its participants, or nil.
func (s *Store) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT project_id, title, COALESCE(description, ''), COALESCE(start_date, ''), COALESCE(due_date, '')
		FROM projects WHERE project_id = ? LIMIT 1
	`, projectID)

	var project models.Project
	err := row.Scan(&project.ProjectID, &project.Title, &project.Description, &project.StartDate, &project.DueDate)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	participants, err := s.ListParticipants(ctx, projectID)
	if err != nil {
		return nil, err
	}
	project.Participants = participants
	return &project, nil
}

// ListProjects returns every project, or only those the user participates in.
func (s *Store) ListProjects(ctx context.Context, userID int64, all bool) ([]models.Project, error) {
	query := `
		SELECT project_id, title, COALESCE(description, ''), COALESCE(start_date, ''), COALESCE(due_date, '')
		FROM projects ORDER BY project_id
	`
	args := []any{}
	if !all {
		query = `
			SELECT p.project_id, p.title, COALESCE(p.description, ''), COALESCE(p.start_date, ''), COALESCE(p.due_date, '')
			FROM projects p
			JOIN participants pa ON pa.project_id = p.project_id
			WHERE pa.user_id = ?
			ORDER BY p.project_id
		`
		args = append(args, userID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var project models.Project
		if err := rows.Scan(&project.ProjectID, &project.Title, &project.Description, &project.StartDate, &project.DueDate); err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

// AddParticipant adds a user to a project; adding twice is not an error.
func (s *Store) AddParticipant(ctx context.Context, projectID string, userID int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO participants (project_id, user_id) VALUES (?, ?)
	`, projectID, userID)
	return err
}

// IsParticipant reports whether the user belongs to the project.
func (s *Store) IsParticipant(ctx context.Context, projectID string, userID int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM participants WHERE project_id = ? AND user_id = ? LIMIT 1
	`, projectID, userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListParticipants returns project members ordered by user id.
func (s *Store) ListParticipants(ctx context.Context, projectID string) ([]models.Participant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.name, u.role
		FROM participants pa
		JOIN users u ON u.id = pa.user_id
		WHERE pa.project_id = ?
		ORDER BY u.id
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		var p models.Participant
		var role string
		if err := rows.Scan(&p.ID, &p.Name, &role); err != nil {
			return nil, err
		}
		p.Role = models.Role(role)
		participants = append(participants, p)
	}
	return participants, rows.Err()
}
