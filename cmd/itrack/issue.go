package main

import (
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"itrack/internal/api"
	"itrack/internal/config"
	"itrack/internal/issue"
	"itrack/internal/session"
)

// withController loads the addressed issue into a lifecycle controller bound
// to the session's role and runs fn on it.
func withController(cmd *cobra.Command, cfg *config.Config, projectFlag, rawIssueID string, fn func(*issue.Controller) error) error {
	projectID, err := resolveProject(cfg, projectFlag)
	if err != nil {
		return err
	}
	issueID, err := parseID(rawIssueID)
	if err != nil {
		return err
	}

	return withSession(cfg, func(client *api.Client, sess *session.Session) error {
		ctrl := issue.NewController(client, projectID, issueID, sess.Role)
		if err := ctrl.Load(cmd.Context()); err != nil {
			return err
		}
		return fn(ctrl)
	})
}

func newIssueCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Browse and report issues",
	}

	cmd.AddCommand(
		newIssueListCmd(cfg),
		newIssueShowCmd(cfg),
		newIssueReportCmd(cfg),
	)

	return cmd
}

func newIssueListCmd(cfg *config.Config) *cobra.Command {
	var (
		project string
		query   string
		page    int
		size    int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List issues in a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := resolveProject(cfg, project)
			if err != nil {
				return err
			}

			values := url.Values{}
			setIfNotEmpty(values, "q", query)
			if page > 0 {
				values.Set("page", strconv.Itoa(page))
			}
			if size > 0 {
				values.Set("size", strconv.Itoa(size))
			}

			return withSession(cfg, func(client *api.Client, _ *session.Session) error {
				issues, err := client.ListIssues(cmd.Context(), projectID, values)
				if err != nil {
					return err
				}
				if structuredOutput() {
					return writeStructured(issues)
				}
				return writeIssueList(issues)
			})
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "project id")
	cmd.Flags().StringVar(&query, "query", "", "match against title and keywords")
	cmd.Flags().IntVar(&page, "page", 0, "page number, starting at 0")
	cmd.Flags().IntVar(&size, "size", 0, "page size")

	return cmd
}

func newIssueShowCmd(cfg *config.Config) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "show <issue-id>",
		Short: "Show an issue with its comments",
		Args:  requireIssueID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withController(cmd, cfg, project, args[0], func(ctrl *issue.Controller) error {
				loaded, ok := ctrl.Issue()
				if !ok {
					return issue.ErrNotLoaded
				}
				comments := ctrl.Comments()

				if structuredOutput() {
					return writeStructured(struct {
						Issue    any `json:"issue" yaml:"issue"`
						Comments any `json:"comments" yaml:"comments"`
					}{loaded, comments})
				}

				if err := writeIssueDetail(loaded); err != nil {
					return err
				}
				if targets := ctrl.AvailableTransitions(); len(targets) > 0 {
					if err := writePlain("transitions: %v\n", targets); err != nil {
						return err
					}
				}
				if len(comments) == 0 {
					return nil
				}
				if err := writePlain("comments:\n"); err != nil {
					return err
				}
				return writeCommentList(comments)
			})
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "project id")

	return cmd
}

func newIssueReportCmd(cfg *config.Config) *cobra.Command {
	var (
		project     string
		description string
		priority    string
		keywords    string
		dueDate     string
	)

	cmd := &cobra.Command{
		Use:   "report <title>",
		Short: "Report a new issue",
		Args:  requireExactlyArgs(1, "title is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := resolveProject(cfg, project)
			if err != nil {
				return err
			}

			return withSession(cfg, func(client *api.Client, _ *session.Session) error {
				created, err := client.CreateIssue(cmd.Context(), projectID, api.IssueCreateRequest{
					Title:       args[0],
					Description: description,
					Priority:    priority,
					Keywords:    splitCommaList(keywords),
					DueDate:     dueDate,
				})
				if err != nil {
					return err
				}
				if structuredOutput() {
					return writeStructured(created)
				}
				return writePlain("reported issue #%d\n", created.ID)
			})
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "project id")
	cmd.Flags().StringVar(&description, "description", "", "issue description")
	cmd.Flags().StringVar(&priority, "priority", "", "blocker, critical, major, minor or trivial")
	cmd.Flags().StringVar(&keywords, "keywords", "", "comma separated keywords")
	cmd.Flags().StringVar(&dueDate, "due-date", "", "due date (YYYY-MM-DD)")

	return cmd
}
