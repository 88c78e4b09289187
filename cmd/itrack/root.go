package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"itrack/internal/config"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	var (
		jsonOutput bool
		yamlOutput bool
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "itrack",
		Short: "itrack is a role-aware issue tracker",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if jsonOutput && yamlOutput {
				return fmt.Errorf("--json and --yaml are mutually exclusive")
			}
			selectOutputFormatter(jsonOutput, yamlOutput)

			warning, err := configureLoggerForCLI(logLevel, cfg.LogLevel)
			if err != nil {
				return err
			}
			if warning != "" {
				fmt.Fprintln(os.Stderr, warning)
			}
			return nil
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")
	cmd.PersistentFlags().BoolVar(&yamlOutput, "yaml", false, "output YAML")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newSrvCmd(cfg),
		newLoginCmd(cfg),
		newLogoutCmd(cfg),
		newWhoamiCmd(cfg),
		newProjectCmd(cfg),
		newIssueCmd(cfg),
		newAssignCmd(cfg),
		newPriorityCmd(cfg),
		newCommentCmd(cfg),
		newUserCmd(cfg),
		newConfigCmd(cfg),
	)
	cmd.AddCommand(newActionCmds(cfg)...)

	return cmd
}
