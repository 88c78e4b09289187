package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"itrack/internal/auth"
	"itrack/internal/config"
	"itrack/internal/models"
	"itrack/internal/server"
	"itrack/internal/store"
)

const (
	adminLoginEnvKey    = "ITRACK_ADMIN_LOGIN"
	adminPasswordEnvKey = "ITRACK_ADMIN_PASSWORD"
)

func newSrvCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "srv",
		Short: "Run the itrack API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg == nil {
				return fmt.Errorf("config not initialized")
			}
			if cfg.DBPath == "" {
				return fmt.Errorf("db path is required")
			}

			logger := slog.Default().With("component", "server")

			addr, err := server.ListenAddr(cfg.APIURL)
			if err != nil {
				return err
			}

			logger.Info("opening database", "path", cfg.DBPath)
			st, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := ensureAdminAccount(cmd.Context(), st, logger); err != nil {
				return err
			}

			return server.New(addr, st, logger).ListenAndServe()
		},
	}
}

// ensureAdminAccount seeds the first admin on an empty database so the API
// is usable at all. Credentials come from the environment.
func ensureAdminAccount(ctx context.Context, st *store.Store, logger *slog.Logger) error {
	existing, err := st.ListUsers(ctx, store.UserFilter{Size: 1})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	loginID := strings.TrimSpace(os.Getenv(adminLoginEnvKey))
	password := os.Getenv(adminPasswordEnvKey)
	if loginID == "" || password == "" {
		return fmt.Errorf("empty database: set %s and %s to seed the first admin", adminLoginEnvKey, adminPasswordEnvKey)
	}

	loginID, err = auth.NormalizeLoginID(loginID)
	if err != nil {
		return err
	}
	if err := auth.ValidatePassword(password); err != nil {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	if _, err := st.CreateUser(ctx, loginID, hash, loginID, models.RoleAdmin, time.Now().UTC()); err != nil {
		return err
	}
	logger.Info("seeded admin account", "login_id", loginID)
	return nil
}
