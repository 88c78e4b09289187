package main

import (
	"github.com/spf13/cobra"

	"itrack/internal/api"
	"itrack/internal/config"
	"itrack/internal/session"
)

func newProjectCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	cmd.AddCommand(
		newProjectListCmd(cfg),
		newProjectShowCmd(cfg),
		newProjectNewCmd(cfg),
		newProjectMembersCmd(cfg),
		newProjectAddMemberCmd(cfg),
	)

	return cmd
}

func newProjectListCmd(cfg *config.Config) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cfg, func(client *api.Client, _ *session.Session) error {
				projects, err := client.ListProjects(cmd.Context(), all)
				if err != nil {
					return err
				}
				if structuredOutput() {
					return writeStructured(projects)
				}
				return writeProjectList(projects)
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "list every project (admin only)")

	return cmd
}

func newProjectShowCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show project details",
		Args:  requireExactlyArgs(1, "project id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cfg, func(client *api.Client, _ *session.Session) error {
				project, err := client.GetProject(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if structuredOutput() {
					return writeStructured(project)
				}
				return writeProjectDetail(project)
			})
		},
	}
}

func newProjectNewCmd(cfg *config.Config) *cobra.Command {
	var (
		title       string
		description string
		startDate   string
		dueDate     string
		memberIDs   []int64
	)

	cmd := &cobra.Command{
		Use:   "new <project-id>",
		Short: "Create a project",
		Args:  requireExactlyArgs(1, "project id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cfg, func(client *api.Client, _ *session.Session) error {
				project, err := client.CreateProject(cmd.Context(), api.ProjectCreateRequest{
					ProjectID:   args[0],
					Title:       title,
					Description: description,
					StartDate:   startDate,
					DueDate:     dueDate,
					UserIDs:     memberIDs,
				})
				if err != nil {
					return err
				}
				if structuredOutput() {
					return writeStructured(project)
				}
				return writePlain("created project %s\n", project.ProjectID)
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "project title")
	cmd.Flags().StringVar(&description, "description", "", "project description")
	cmd.Flags().StringVar(&startDate, "start-date", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&dueDate, "due-date", "", "due date (YYYY-MM-DD)")
	cmd.Flags().Int64SliceVar(&memberIDs, "member", nil, "user id to add as participant (repeatable)")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newProjectMembersCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "members <project-id>",
		Short: "List project participants",
		Args:  requireExactlyArgs(1, "project id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cfg, func(client *api.Client, _ *session.Session) error {
				participants, err := client.ListParticipants(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if structuredOutput() {
					return writeStructured(participants)
				}
				return writeParticipantList(participants)
			})
		},
	}
}

func newProjectAddMemberCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "add-member <project-id> <user-id>",
		Short: "Add a participant to a project",
		Args:  requireExactlyArgs(2, "project id and user id are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID(args[1])
			if err != nil {
				return err
			}
			return withSession(cfg, func(client *api.Client, _ *session.Session) error {
				if err := client.AddParticipant(cmd.Context(), args[0], userID); err != nil {
					return err
				}
				return writePlain("added user %d to %s\n", userID, args[0])
			})
		},
	}
}
