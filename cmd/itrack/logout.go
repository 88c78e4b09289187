package main

import (
	"github.com/spf13/cobra"

	"itrack/internal/api"
	"itrack/internal/config"
	"itrack/internal/session"
)

func newLogoutCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := sessionStore()
			if err != nil {
				return err
			}

			// Revoke server side when possible; the local session is
			// cleared either way.
			if sess, err := store.Current(); err == nil && sess != nil {
				_ = withSession(cfg, func(client *api.Client, _ *session.Session) error {
					return client.Logout(cmd.Context())
				})
			}

			if err := store.Clear(); err != nil {
				return err
			}
			return writePlain("logged out\n")
		},
	}
}

func newWhoamiCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := sessionStore()
			if err != nil {
				return err
			}
			sess, err := store.Require()
			if err != nil {
				return err
			}

			if structuredOutput() {
				return writeStructured(map[string]string{
					"loginId": sess.LoginID,
					"name":    sess.Name,
					"role":    string(sess.Role),
				})
			}
			return writePlain("%s (%s)\n", sess.LoginID, sess.Role)
		},
	}
}
