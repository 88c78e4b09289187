package models

import (
	"fmt"
	"strings"
)

// Status defines allowed lifecycle states for issues.
type Status string

const (
	StatusNew      Status = "new"
	StatusAssigned Status = "assigned"
	StatusFixed    Status = "fixed"
	StatusResolved Status = "resolved"
	StatusClosed   Status = "closed"
	StatusReopened Status = "reopened"
)

// Role defines the account roles known to the tracker.
type Role string

const (
	RoleAdmin  Role = "admin"
	RolePL     Role = "pl"
	RoleDev    Role = "dev"
	RoleTester Role = "tester"
)

// Priority defines the ordered severity levels, highest first.
type Priority string

const (
	PriorityBlocker  Priority = "blocker"
	PriorityCritical Priority = "critical"
	PriorityMajor    Priority = "major"
	PriorityMinor    Priority = "minor"
	PriorityTrivial  Priority = "trivial"
)

var validStatuses = map[Status]struct{}{
	StatusNew:      {},
	StatusAssigned: {},
	StatusFixed:    {},
	StatusResolved: {},
	StatusClosed:   {},
	StatusReopened: {},
}

var validRoles = map[Role]struct{}{
	RoleAdmin:  {},
	RolePL:     {},
	RoleDev:    {},
	RoleTester: {},
}

// priorityRank orders priorities; a higher rank is more severe.
var priorityRank = map[Priority]int{
	PriorityTrivial:  0,
	PriorityMinor:    1,
	PriorityMajor:    2,
	PriorityCritical: 3,
	PriorityBlocker:  4,
}

// statusTransitions maps each status to its allowed successors.
// Closed is terminal and has no entry.
var statusTransitions = map[Status][]Status{
	StatusNew:      {StatusAssigned, StatusClosed},
	StatusAssigned: {StatusFixed, StatusClosed},
	StatusFixed:    {StatusResolved, StatusClosed},
	StatusResolved: {StatusReopened, StatusClosed},
	StatusReopened: {StatusAssigned, StatusClosed},
}

// transitionActions maps a target status to the named backend action.
// Targets without an entry (notably "assigned") have no action endpoint;
// assignment goes through the assign operation instead.
var transitionActions = map[Status]string{
	StatusResolved: "resolve",
	StatusReopened: "reopen",
	StatusFixed:    "fix",
	StatusClosed:   "close",
}

func IsValidStatus(status Status) bool {
	_, ok := validStatuses[status]
	return ok
}

func IsValidRole(role Role) bool {
	_, ok := validRoles[role]
	return ok
}

func IsValidPriority(priority Priority) bool {
	_, ok := priorityRank[priority]
	return ok
}

// Rank returns the severity rank of a priority; unknown priorities rank
// below trivial.
func (p Priority) Rank() int {
	rank, ok := priorityRank[p]
	if !ok {
		return -1
	}
	return rank
}

// Priorities returns all priorities ordered from most to least severe.
func Priorities() []Priority {
	return []Priority{
		PriorityBlocker,
		PriorityCritical,
		PriorityMajor,
		PriorityMinor,
		PriorityTrivial,
	}
}

// IsTerminal reports whether no transition leaves the given status.
func IsTerminal(status Status) bool {
	return status == StatusClosed
}

// Transitions returns the allowed successor statuses for the given status.
// Terminal and unknown statuses have none.
func Transitions(status Status) []Status {
	next, ok := statusTransitions[status]
	if !ok {
		return nil
	}
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// CanReach reports whether target is an allowed successor of current.
func CanReach(current, target Status) bool {
	for _, next := range statusTransitions[current] {
		if next == target {
			return true
		}
	}
	return false
}

// ActionFor returns the backend action name for a transition target.
// A target with no mapped action must be rejected before any network call.
func ActionFor(target Status) (string, bool) {
	action, ok := transitionActions[target]
	return action, ok
}

// CanTransition reports whether an actor with the given role may change the
// status of an issue currently in the given state: a dev may act only on
// assigned issues, a pl on any other non-terminal state.
func CanTransition(current Status, role Role) bool {
	if IsTerminal(current) {
		return false
	}
	if current == StatusAssigned {
		return role == RoleDev
	}
	return role == RolePL
}

// CanAssign reports whether an actor with the given role may assign a
// developer to an issue in the given state.
func CanAssign(current Status, role Role) bool {
	return (current == StatusNew || current == StatusReopened) && role == RolePL
}

func ParseStatus(raw string) (Status, error) {
	value := Status(strings.ToLower(strings.TrimSpace(raw)))
	if value == "" {
		return "", fmt.Errorf("status is required")
	}
	if !IsValidStatus(value) {
		return "", fmt.Errorf("invalid status: %s", value)
	}
	return value, nil
}

func ParseRole(raw string) (Role, error) {
	value := Role(strings.ToLower(strings.TrimSpace(raw)))
	if value == "" {
		return "", fmt.Errorf("role is required")
	}
	if !IsValidRole(value) {
		return "", fmt.Errorf("invalid role: %s", value)
	}
	return value, nil
}

func ParsePriority(raw string) (Priority, error) {
	value := Priority(strings.ToLower(strings.TrimSpace(raw)))
	if value == "" {
		return "", fmt.Errorf("priority is required")
	}
	if !IsValidPriority(value) {
		return "", fmt.Errorf("invalid priority: %s", value)
	}
	return value, nil
}
