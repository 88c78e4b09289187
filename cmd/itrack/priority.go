package main

import (
	"github.com/spf13/cobra"

	"itrack/internal/config"
	"itrack/internal/issue"
	"itrack/internal/models"
)

func newPriorityCmd(cfg *config.Config) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "priority <issue-id> <level>",
		Short: "Change an issue's priority",
		Args:  requireExactlyArgs(2, "issue id and priority are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			priority, err := models.ParsePriority(args[1])
			if err != nil {
				return err
			}

			return withController(cmd, cfg, project, args[0], func(ctrl *issue.Controller) error {
				if err := ctrl.SetPriority(cmd.Context(), priority); err != nil {
					return err
				}
				updated, _ := ctrl.Issue()
				if structuredOutput() {
					return writeStructured(updated)
				}
				return writePlain("issue #%d priority set to %s\n", updated.ID, updated.Priority)
			})
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "project id")

	return cmd
}
