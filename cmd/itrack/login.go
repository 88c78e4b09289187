package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"itrack/internal/api"
	"itrack/internal/config"
	"itrack/internal/models"
	"itrack/internal/session"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = func() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

func newLoginCmd(cfg *config.Config) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <login-id>",
		Short: "Log in and store the session token",
		Args:  requireExactlyArgs(1, "login id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw := password
			if pw == "" {
				fmt.Fprint(os.Stderr, "Password: ")
				raw, err := readPassword()
				fmt.Fprintln(os.Stderr)
				if err != nil {
					return err
				}
				pw = string(raw)
			}
			if strings.TrimSpace(pw) == "" {
				return fmt.Errorf("password is required")
			}

			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.Login(cmd.Context(), api.LoginRequest{LoginID: args[0], Password: pw})
				if err != nil {
					return err
				}

				role, err := models.ParseRole(resp.Role)
				if err != nil {
					return fmt.Errorf("server returned unknown role %q", resp.Role)
				}

				store, err := sessionStore()
				if err != nil {
					return err
				}
				sess := &session.Session{
					Token:   resp.Token,
					Role:    role,
					Name:    resp.Name,
					LoginID: args[0],
				}
				if err := store.Save(sess); err != nil {
					return err
				}

				if structuredOutput() {
					return writeStructured(map[string]string{"loginId": args[0], "role": resp.Role})
				}
				return writePlain("logged in as %s (%s)\n", args[0], resp.Role)
			})
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")

	return cmd
}
