// Package issue implements the client-side lifecycle controller for a
// single issue: the status state machine, role-gated transitions, the
// assignment sub-operation, priority changes, and the comment sub-lifecycle.
//
// The backend is the final authority on every rule enforced here; the
// controller's checks exist to reject impossible requests before any
// network dispatch and to keep the locally cached copy consistent.
package issue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"itrack/internal/api"
	"itrack/internal/models"
)

const maxRecommendedDevelopers = 3

var (
	// ErrTerminal rejects any transition attempt on a closed issue.
	ErrTerminal = errors.New("issue is closed; no further transitions")
	// ErrNotPermitted rejects a transition the acting role may not perform.
	ErrNotPermitted = errors.New("role may not change this issue's status")
	// ErrInvalidTransition rejects a target not reachable from the current
	// status, or one with no mapped backend action.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrAssignmentNotAllowed rejects assignment outside new/reopened or by
	// a non-pl actor.
	ErrAssignmentNotAllowed = errors.New("assignment not allowed")
	// ErrEmptyComment rejects whitespace-only comment content locally.
	ErrEmptyComment = errors.New("comment content is empty")
	// ErrUnknownComment rejects edits and deletes for comment ids not in
	// the loaded list.
	ErrUnknownComment = errors.New("unknown comment id")
	// ErrNotLoaded is returned when a mutation is attempted before Load.
	ErrNotLoaded = errors.New("issue not loaded")
)

// Controller owns the cached client-side state of one issue and mediates
// every mutation against the backend. On a failed call the cached state is
// left exactly as it was.
type Controller struct {
	client    *api.Client
	projectID string
	issueID   int64
	role      models.Role

	issue        *models.Issue
	comments     []models.Comment
	participants []models.Participant
}

// NewController creates a controller for one issue acting as the given role.
func NewController(client *api.Client, projectID string, issueID int64, role models.Role) *Controller {
	return &Controller{
		client:    client,
		projectID: projectID,
		issueID:   issueID,
		role:      role,
	}
}

// Load fetches the issue, its comments, and the project participants.
// Whatever was fetched before the first failure is committed; prior state is
// kept for anything that failed.
func (c *Controller) Load(ctx context.Context) error {
	issue, err := c.client.GetIssue(ctx, c.projectID, c.issueID)
	if err != nil {
		return fmt.Errorf("fetch issue: %w", err)
	}
	c.issue = &issue

	comments, err := c.client.ListComments(ctx, c.projectID, c.issueID)
	if err != nil {
		return fmt.Errorf("fetch comments: %w", err)
	}
	c.comments = comments

	participants, err := c.client.ListParticipants(ctx, c.projectID)
	if err != nil {
		return fmt.Errorf("fetch participants: %w", err)
	}
	c.participants = participants

	return nil
}

// Issue returns a copy of the cached issue.
func (c *Controller) Issue() (models.Issue, bool) {
	if c.issue == nil {
		return models.Issue{}, false
	}
	return *c.issue, true
}

// Comments returns a copy of the cached comment list in insertion order.
func (c *Controller) Comments() []models.Comment {
	out := make([]models.Comment, len(c.comments))
	copy(out, c.comments)
	return out
}

// Participants returns a copy of the cached participant list.
func (c *Controller) Participants() []models.Participant {
	out := make([]models.Participant, len(c.participants))
	copy(out, c.participants)
	return out
}

// CommentByID finds a cached comment by its unique id. Comments are always
// addressed by id, never by list position.
func (c *Controller) CommentByID(commentID int64) (models.Comment, bool) {
	idx := c.commentIndex(commentID)
	if idx < 0 {
		return models.Comment{}, false
	}
	return c.comments[idx], true
}

// AvailableTransitions returns the transition targets the acting role may
// request for the current status. Empty for a closed issue or an
// unauthorized role, so no transition control is offered.
func (c *Controller) AvailableTransitions() []models.Status {
	if c.issue == nil || !models.CanTransition(c.issue.Status, c.role) {
		return nil
	}
	return models.Transitions(c.issue.Status)
}

// CanAssign reports whether the assignment control should be offered.
func (c *Controller) CanAssign() bool {
	return c.issue != nil && models.CanAssign(c.issue.Status, c.role)
}

// RecommendedDevelopers returns up to three developer-role participants to
// offer as assignment candidates.
func (c *Controller) RecommendedDevelopers() []models.Participant {
	var devs []models.Participant
	for _, p := range c.participants {
		if p.Role != models.RoleDev {
			continue
		}
		devs = append(devs, p)
		if len(devs) == maxRecommendedDevelopers {
			break
		}
	}
	return devs
}

// Transition requests a status change to target. The target must be
// reachable from the current status, the acting role must be permitted, and
// the target must map to a named backend action; otherwise the request is
// rejected before any network call.
func (c *Controller) Transition(ctx context.Context, target models.Status) error {
	if c.issue == nil {
		return ErrNotLoaded
	}
	current := c.issue.Status
	if models.IsTerminal(current) {
		return ErrTerminal
	}
	if !models.CanTransition(current, c.role) {
		return ErrNotPermitted
	}
	if !models.CanReach(current, target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, target)
	}
	action, ok := models.ActionFor(target)
	if !ok {
		return fmt.Errorf("%w: no action for target %s", ErrInvalidTransition, target)
	}

	updated, err := c.client.ApplyAction(ctx, c.projectID, c.issueID, action)
	if err != nil {
		return fmt.Errorf("change status: %w", err)
	}
	c.reconcileIssue(updated, func(issue *models.Issue) {
		issue.Status = target
		stampTransition(issue, target, time.Now().UTC())
	})
	return nil
}

// Assign assigns the participant with the given user id. Permitted only on
// new or reopened issues and only for the pl role.
func (c *Controller) Assign(ctx context.Context, userID int64) error {
	if c.issue == nil {
		return ErrNotLoaded
	}
	if !models.CanAssign(c.issue.Status, c.role) {
		return ErrAssignmentNotAllowed
	}
	chosen, ok := c.participantByID(userID)
	if !ok {
		return fmt.Errorf("user %d is not a participant of project %s", userID, c.projectID)
	}

	updated, err := c.client.AssignIssue(ctx, c.projectID, c.issueID, userID)
	if err != nil {
		return fmt.Errorf("assign developer: %w", err)
	}
	c.reconcileIssue(updated, func(issue *models.Issue) {
		issue.AssignedTo = chosen.Name
		issue.Assignee = &models.UserRef{ID: chosen.ID, Name: chosen.Name, Role: chosen.Role}
	})
	return nil
}

// SetPriority persists a priority change via a full-issue update. Priority
// changes are not role-gated.
func (c *Controller) SetPriority(ctx context.Context, priority models.Priority) error {
	if c.issue == nil {
		return ErrNotLoaded
	}
	if !models.IsValidPriority(priority) {
		return fmt.Errorf("invalid priority: %s", priority)
	}

	payload := *c.issue
	payload.Priority = priority
	updated, err := c.client.UpdateIssue(ctx, c.projectID, c.issueID, payload)
	if err != nil {
		return fmt.Errorf("change priority: %w", err)
	}
	c.reconcileIssue(updated, func(issue *models.Issue) {
		issue.Priority = priority
	})
	return nil
}

// AddComment appends a comment. Whitespace-only content is rejected locally
// with no backend call and no change to the cached list.
func (c *Controller) AddComment(ctx context.Context, content string) (models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Comment{}, ErrEmptyComment
	}

	created, err := c.client.AddComment(ctx, c.projectID, c.issueID, api.CommentRequest{Content: content})
	if err != nil {
		return models.Comment{}, fmt.Errorf("add comment: %w", err)
	}
	c.comments = append(c.comments, created)
	return created, nil
}

// EditComment replaces the content of the comment with the given id and
// stamps its edit time.
func (c *Controller) EditComment(ctx context.Context, commentID int64, content string) (models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Comment{}, ErrEmptyComment
	}
	idx := c.commentIndex(commentID)
	if idx < 0 {
		return models.Comment{}, ErrUnknownComment
	}

	updated, err := c.client.EditComment(ctx, c.projectID, c.issueID, commentID, api.CommentRequest{Content: content})
	if err != nil {
		return models.Comment{}, fmt.Errorf("edit comment: %w", err)
	}
	if updated.CommentID == 0 {
		updated = c.comments[idx]
		updated.Content = content
		now := time.Now().UTC()
		updated.EditedAt = &now
	}
	c.comments[idx] = updated
	return updated, nil
}

// DeleteComment removes the comment with the given id.
func (c *Controller) DeleteComment(ctx context.Context, commentID int64) error {
	idx := c.commentIndex(commentID)
	if idx < 0 {
		return ErrUnknownComment
	}

	if err := c.client.DeleteComment(ctx, c.projectID, c.issueID, commentID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	c.comments = append(c.comments[:idx], c.comments[idx+1:]...)
	return nil
}

// reconcileIssue replaces the cached issue with the backend's response when
// one was returned, otherwise applies the local fallback mutation.
func (c *Controller) reconcileIssue(updated models.Issue, fallback func(*models.Issue)) {
	if updated.ID != 0 {
		c.issue = &updated
		return
	}
	fallback(c.issue)
}

func (c *Controller) commentIndex(commentID int64) int {
	for i, comment := range c.comments {
		if comment.CommentID == commentID {
			return i
		}
	}
	return -1
}

func (c *Controller) participantByID(userID int64) (models.Participant, bool) {
	for _, p := range c.participants {
		if p.ID == userID {
			return p, true
		}
	}
	return models.Participant{}, false
}

func stampTransition(issue *models.Issue, target models.Status, now time.Time) {
	switch target {
	case models.StatusFixed:
		issue.FixedAt = &now
	case models.StatusResolved:
		issue.ResolvedAt = &now
	case models.StatusClosed:
		issue.ClosedAt = &now
	case models.StatusReopened:
		issue.ReopenedAt = &now
	}
}
