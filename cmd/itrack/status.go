package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"itrack/internal/config"
	"itrack/internal/issue"
	"itrack/internal/models"
)

// newActionCmds builds one top-level command per lifecycle action. Gating
// happens in the controller before anything reaches the server.
func newActionCmds(cfg *config.Config) []*cobra.Command {
	specs := []struct {
		use    string
		short  string
		target models.Status
	}{
		{"fix <issue-id>", "Mark an assigned issue fixed", models.StatusFixed},
		{"resolve <issue-id>", "Resolve a fixed or in-flight issue", models.StatusResolved},
		{"close <issue-id>", "Close an issue for good", models.StatusClosed},
		{"reopen <issue-id>", "Reopen a resolved issue", models.StatusReopened},
	}

	cmds := make([]*cobra.Command, 0, len(specs))
	for _, spec := range specs {
		cmds = append(cmds, newTransitionCmd(cfg, spec.use, spec.short, spec.target))
	}
	return cmds
}

func newTransitionCmd(cfg *config.Config, use, short string, target models.Status) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  requireIssueID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withController(cmd, cfg, project, args[0], func(ctrl *issue.Controller) error {
				if err := ctrl.Transition(cmd.Context(), target); err != nil {
					return transitionHint(ctrl, err)
				}
				updated, _ := ctrl.Issue()
				if structuredOutput() {
					return writeStructured(updated)
				}
				return writePlain("issue #%d is now %s\n", updated.ID, updated.Status)
			})
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "project id")

	return cmd
}

// transitionHint augments a rejected transition with the moves that would
// have been allowed.
func transitionHint(ctrl *issue.Controller, err error) error {
	targets := ctrl.AvailableTransitions()
	if len(targets) == 0 {
		return err
	}
	return fmt.Errorf("%w (allowed: %v)", err, targets)
}
