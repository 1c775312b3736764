package main

import (
	"errors"
	"fmt"

	"food-rescue-api/apperr"
	"food-rescue-api/config"
	"food-rescue-api/logger"
	"food-rescue-api/services"

	"github.com/spf13/cobra"
)

// food-rescue-api migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := boot()
		if err != nil {
			return err
		}
		logger.L.Info("running migrations")
		return config.Migrate(db)
	},
}

// food-rescue-api seed-admin
var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Create the initial ADMIN account from the admin.* settings if it does not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := boot()
		if err != nil {
			return err
		}
		if err := config.Migrate(db); err != nil {
			return err
		}
		if cfg.Admin.Password == "" {
			return errors.New("admin.password (FOODRESCUE_ADMIN_PASSWORD) must be set")
		}

		svc := newServices(cfg, db)
		ctx := cmd.Context()
		if existing, err := svc.Identity.FindByUsername(ctx, cfg.Admin.Username); err == nil {
			logger.L.Info("admin already exists", "username", existing.Username, "id", existing.ID)
			return nil
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return err
		}

		admin, err := svc.Identity.Register(ctx, services.RegisterInput{
			Name:     cfg.Admin.Name,
			Username: cfg.Admin.Username,
			Email:    cfg.Admin.Email,
			Password: cfg.Admin.Password,
			Role:     "ADMIN",
		}, services.SystemGrantor)
		if err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		logger.L.Info("admin created", "username", admin.Username, "id", admin.ID)
		return nil
	},
}
