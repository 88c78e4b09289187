package main

import (
	"github.com/spf13/cobra"

	"itrack/internal/config"
	"itrack/internal/issue"
)

func newCommentCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Manage issue comments",
	}

	cmd.AddCommand(
		newCommentListCmd(cfg),
		newCommentAddCmd(cfg),
		newCommentEditCmd(cfg),
		newCommentDeleteCmd(cfg),
	)

	return cmd
}

func newCommentListCmd(cfg *config.Config) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "list <issue-id>",
		Short: "List comments on an issue",
		Args:  requireIssueID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withController(cmd, cfg, project, args[0], func(ctrl *issue.Controller) error {
				comments := ctrl.Comments()
				if structuredOutput() {
					return writeStructured(comments)
				}
				return writeCommentList(comments)
			})
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "project id")

	return cmd
}

func newCommentAddCmd(cfg *config.Config) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "add <issue-id> <content>",
		Short: "Add a comment to an issue",
		Args:  requireExactlyArgs(2, "issue id and content are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withController(cmd, cfg, project, args[0], func(ctrl *issue.Controller) error {
				comment, err := ctrl.AddComment(cmd.Context(), args[1])
				if err != nil {
					return err
				}
				if structuredOutput() {
					return writeStructured(comment)
				}
				return writePlain("added comment #%d\n", comment.CommentID)
			})
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "project id")

	return cmd
}

func newCommentEditCmd(cfg *config.Config) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "edit <issue-id> <comment-id> <content>",
		Short: "Edit one of your comments",
		Args:  requireExactlyArgs(3, "issue id, comment id and content are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			commentID, err := parseID(args[1])
			if err != nil {
				return err
			}
			return withController(cmd, cfg, project, args[0], func(ctrl *issue.Controller) error {
				comment, err := ctrl.EditComment(cmd.Context(), commentID, args[2])
				if err != nil {
					return err
				}
				if structuredOutput() {
					return writeStructured(comment)
				}
				return writePlain("edited comment #%d\n", comment.CommentID)
			})
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "project id")

	return cmd
}

func newCommentDeleteCmd(cfg *config.Config) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "delete <issue-id> <comment-id>",
		Short: "Delete one of your comments",
		Args:  requireExactlyArgs(2, "issue id and comment id are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			commentID, err := parseID(args[1])
			if err != nil {
				return err
			}
			return withController(cmd, cfg, project, args[0], func(ctrl *issue.Controller) error {
				if err := ctrl.DeleteComment(cmd.Context(), commentID); err != nil {
					return err
				}
				return writePlain("deleted comment #%d\n", commentID)
			})
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "project id")

	return cmd
}
