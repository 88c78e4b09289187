package main

import (
	"github.com/spf13/cobra"

	"itrack/internal/config"
	"itrack/internal/issue"
)

func newAssignCmd(cfg *config.Config) *cobra.Command {
	var (
		project   string
		recommend bool
	)

	cmd := &cobra.Command{
		Use:   "assign <issue-id> [<user-id>]",
		Short: "Assign an issue to a developer",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withController(cmd, cfg, project, args[0], func(ctrl *issue.Controller) error {
				if recommend || len(args) == 1 {
					devs := ctrl.RecommendedDevelopers()
					if structuredOutput() {
						return writeStructured(devs)
					}
					if len(devs) == 0 {
						return writePlain("no developers on this project\n")
					}
					if err := writePlain("suggested assignees:\n"); err != nil {
						return err
					}
					return writeParticipantList(devs)
				}

				userID, err := parseID(args[1])
				if err != nil {
					return err
				}
				if err := ctrl.Assign(cmd.Context(), userID); err != nil {
					return err
				}

				updated, _ := ctrl.Issue()
				if structuredOutput() {
					return writeStructured(updated)
				}
				return writePlain("issue #%d assigned to %s\n", updated.ID, updated.AssignedTo)
			})
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "project id")
	cmd.Flags().BoolVar(&recommend, "recommend", false, "only list suggested assignees")

	return cmd
}
