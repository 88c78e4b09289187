package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"itrack/internal/format"
	"itrack/internal/models"
)

var outputFormatter format.Formatter

func selectOutputFormatter(jsonOutput, yamlOutput bool) {
	switch {
	case yamlOutput:
		outputFormatter = format.YAMLFormatter{}
	case jsonOutput:
		outputFormatter = format.JSONFormatter{}
	default:
		outputFormatter = nil
	}
}

// structuredOutput reports whether --json or --yaml was requested.
func structuredOutput() bool {
	return outputFormatter != nil
}

func writeStructured(payload any) error {
	return outputFormatter.Write(os.Stdout, payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

func formatIssueLine(issue models.Issue) string {
	assignee := "-"
	if issue.AssignedTo != "" {
		assignee = issue.AssignedTo
	}
	return fmt.Sprintf("#%-4d %-9s %-8s %-12s %s", issue.ID, issue.Status, issue.Priority, assignee, issue.Title)
}

func writeIssueList(issues []models.Issue) error {
	for _, issue := range issues {
		if err := writePlain("%s\n", formatIssueLine(issue)); err != nil {
			return err
		}
	}
	return nil
}

func writeIssueDetail(issue models.Issue) error {
	lines := []string{
		fmt.Sprintf("id: %d", issue.ID),
		fmt.Sprintf("project: %s", issue.ProjectID),
		fmt.Sprintf("title: %s", issue.Title),
		fmt.Sprintf("status: %s", issue.Status),
		fmt.Sprintf("priority: %s", issue.Priority),
		fmt.Sprintf("reported_at: %s", formatTime(issue.ReportedAt)),
	}

	if issue.Reporter != nil {
		lines = append(lines, fmt.Sprintf("reporter: %s", issue.Reporter.Name))
	}
	if issue.AssignedTo != "" {
		lines = append(lines, fmt.Sprintf("assigned_to: %s", issue.AssignedTo))
	}
	if issue.Description != "" {
		lines = append(lines, fmt.Sprintf("description: %s", issue.Description))
	}
	if len(issue.Keywords) > 0 {
		lines = append(lines, fmt.Sprintf("keywords: %s", strings.Join(issue.Keywords, ", ")))
	}
	if issue.DueDate != "" {
		lines = append(lines, fmt.Sprintf("due_date: %s", issue.DueDate))
	}
	if issue.FixedAt != nil {
		lines = append(lines, fmt.Sprintf("fixed_at: %s", formatTime(*issue.FixedAt)))
	}
	if issue.ResolvedAt != nil {
		lines = append(lines, fmt.Sprintf("resolved_at: %s", formatTime(*issue.ResolvedAt)))
	}
	if issue.ClosedAt != nil {
		lines = append(lines, fmt.Sprintf("closed_at: %s", formatTime(*issue.ClosedAt)))
	}
	if issue.ReopenedAt != nil {
		lines = append(lines, fmt.Sprintf("reopened_at: %s", formatTime(*issue.ReopenedAt)))
	}

	return writePlain("%s\n", strings.Join(lines, "\n"))
}

func writeCommentList(comments []models.Comment) error {
	for _, comment := range comments {
		edited := ""
		if comment.EditedAt != nil {
			edited = " (edited)"
		}
		err := writePlain("#%d %s [%s]%s\n  %s\n",
			comment.CommentID, comment.Author.Name, formatTime(comment.CreatedAt), edited, comment.Content)
		if err != nil {
			return err
		}
	}
	return nil
}

func writeProjectList(projects []models.Project) error {
	for _, project := range projects {
		if err := writePlain("%-16s %s\n", project.ProjectID, project.Title); err != nil {
			return err
		}
	}
	return nil
}

func writeProjectDetail(project models.Project) error {
	lines := []string{
		fmt.Sprintf("project: %s", project.ProjectID),
		fmt.Sprintf("title: %s", project.Title),
	}
	if project.Description != "" {
		lines = append(lines, fmt.Sprintf("description: %s", project.Description))
	}
	if project.StartDate != "" {
		lines = append(lines, fmt.Sprintf("start_date: %s", project.StartDate))
	}
	if project.DueDate != "" {
		lines = append(lines, fmt.Sprintf("due_date: %s", project.DueDate))
	}
	for _, p := range project.Participants {
		lines = append(lines, fmt.Sprintf("  - %d %s (%s)", p.ID, p.Name, p.Role))
	}
	return writePlain("%s\n", strings.Join(lines, "\n"))
}

func writeUserList(users []models.User) error {
	for _, user := range users {
		if err := writePlain("%-5d %-16s %-8s %s\n", user.ID, user.LoginID, user.Role, user.Name); err != nil {
			return err
		}
	}
	return nil
}

func writeParticipantList(participants []models.Participant) error {
	for _, p := range participants {
		if err := writePlain("%-5d %-8s %s\n", p.ID, p.Role, p.Name); err != nil {
			return err
		}
	}
	return nil
}
