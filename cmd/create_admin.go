package cmd

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/visheshsingal/hitech/config"
	"github.com/visheshsingal/hitech/middleware"
	"github.com/visheshsingal/hitech/models"
	"github.com/visheshsingal/hitech/store"
	"github.com/visheshsingal/hitech/utils"
)

var adminFlags struct {
	email    string
	password string
	name     string
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account",
	RunE:  runCreateAdmin,
}

func init() {
	createAdminCmd.Flags().StringVar(&adminFlags.email, "email", "", "admin email (required)")
	createAdminCmd.Flags().StringVar(&adminFlags.password, "password", "", "admin password, at least 6 characters (required)")
	createAdminCmd.Flags().StringVar(&adminFlags.name, "name", "Admin", "display name")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(createAdminCmd)
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	email := strings.ToLower(strings.TrimSpace(adminFlags.email))
	if !utils.IsValidEmail(email) {
		return errors.New("invalid email address")
	}
	if len(adminFlags.password) < 6 {
		return errors.New("password must be at least 6 characters")
	}

	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.closer()

	disconnect, err := a.connect(cmd.Context())
	if err != nil {
		return err
	}
	defer disconnect()

	hash, err := utils.HashPassword(adminFlags.password)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	admin := &models.Admin{
		Email:     email,
		Password:  hash,
		Name:      adminFlags.name,
		Role:      middleware.RoleAdmin,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	admins := store.NewAdminStore(config.GetCollection(a.cfg.Mongo.Collections.Admins))
	if err := admins.Insert(cmd.Context(), admin); err != nil {
		return err
	}

	a.log.Info("admin created", "admin_id", admin.ID.Hex(), "email", email)
	return nil
}
