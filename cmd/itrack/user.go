package main

import (
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"itrack/internal/api"
	"itrack/internal/auth"
	"itrack/internal/config"
	"itrack/internal/session"
)

func newUserCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts (admin)",
	}

	cmd.AddCommand(
		newUserListCmd(cfg),
		newUserNewCmd(cfg),
	)

	return cmd
}

func newUserListCmd(cfg *config.Config) *cobra.Command {
	var (
		query string
		role  string
		page  int
		size  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values := url.Values{}
			setIfNotEmpty(values, "q", query)
			setIfNotEmpty(values, "role", role)
			if page > 0 {
				values.Set("page", strconv.Itoa(page))
			}
			if size > 0 {
				values.Set("size", strconv.Itoa(size))
			}

			return withSession(cfg, func(client *api.Client, _ *session.Session) error {
				users, err := client.ListUsers(cmd.Context(), values)
				if err != nil {
					return err
				}
				if structuredOutput() {
					return writeStructured(users)
				}
				return writeUserList(users)
			})
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "match against name and login id")
	cmd.Flags().StringVar(&role, "role", "", "filter by role")
	cmd.Flags().IntVar(&page, "page", 0, "page number, starting at 0")
	cmd.Flags().IntVar(&size, "size", 0, "page size")

	return cmd
}

func newUserNewCmd(cfg *config.Config) *cobra.Command {
	var (
		name     string
		role     string
		password string
	)

	cmd := &cobra.Command{
		Use:   "new <login-id>",
		Short: "Create an account",
		Args:  requireExactlyArgs(1, "login id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			loginID, err := auth.NormalizeLoginID(args[0])
			if err != nil {
				return err
			}

			pw := password
			if pw == "" {
				pw, err = promptNewPassword()
				if err != nil {
					return err
				}
			}
			if err := auth.ValidatePassword(pw); err != nil {
				return err
			}

			return withSession(cfg, func(client *api.Client, _ *session.Session) error {
				created, err := client.CreateUser(cmd.Context(), api.UserCreateRequest{
					LoginID:  loginID,
					Password: pw,
					Name:     name,
					Role:     role,
				})
				if err != nil {
					return err
				}
				if structuredOutput() {
					return writeStructured(created)
				}
				return writePlain("created user %s (%s) with id %d\n", created.LoginID, created.Role, created.ID)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name (defaults to login id)")
	cmd.Flags().StringVar(&role, "role", "", "admin, pl, dev or tester")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("role")

	return cmd
}

func promptNewPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	first, err := readPassword()
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}

	fmt.Fprint(os.Stderr, "Repeat password: ")
	second, err := readPassword()
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}

	if string(first) != string(second) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(first), nil
}
