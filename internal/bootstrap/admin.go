package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/credtube/credtube-server-go/internal/features/user"
	"github.com/credtube/credtube-server-go/pkg/types"
	"gorm.io/gorm"
)

const (
	defaultAdminEmail    = "admin@credtube.app"
	defaultAdminPassword = "changeme-admin-1"
	defaultAdminName     = "CredTube Admin"
)

// EnsureDefaultAdmin creates the default admin account when it does not exist
// and guarantees it carries the admin role. Credentials can be overridden via
// CREDTUBE_ADMIN_EMAIL and CREDTUBE_ADMIN_PASSWORD.
func EnsureDefaultAdmin(db *gorm.DB, logger *slog.Logger) error {
	email := defaultAdminEmail
	if v := os.Getenv("CREDTUBE_ADMIN_EMAIL"); v != "" {
		email = v
	}
	password := defaultAdminPassword
	if v := os.Getenv("CREDTUBE_ADMIN_PASSWORD"); v != "" {
		password = v
	}

	var existing user.User
	err := db.Preload("Roles").Where("LOWER(email) = ?", strings.ToLower(email)).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		created, createErr := user.Create(db, user.CreateInput{
			Name:     defaultAdminName,
			Email:    email,
			Password: password,
			Roles:    []types.Role{types.RoleAdmin},
		})
		if createErr != nil {
			if isUndefinedTableError(createErr) {
				logger.Warn("default admin skipped - users table missing", slog.String("email", email))
				return nil
			}
			return fmt.Errorf("create admin: %w", createErr)
		}

		logger.Info("default admin created", slog.String("email", created.Email))
		return nil

	case err != nil:
		if isUndefinedTableError(err) {
			logger.Warn("default admin skipped - users table missing", slog.String("email", email))
			return nil
		}
		return fmt.Errorf("get admin: %w", err)
	}

	if !existing.HasRole(types.RoleAdmin) {
		if err := user.AssignRole(db, existing.ID, types.RoleAdmin); err != nil {
			return fmt.Errorf("assign admin role: %w", err)
		}
		logger.Info("admin role restored", slog.String("email", existing.Email))
		return nil
	}

	logger.Info("default admin already up to date", slog.String("email", existing.Email))
	return nil
}

func isUndefinedTableError(err error) bool {
	if err == nil {
		return false
	}

	message := err.Error()
	return strings.Contains(message, "relation \"users\" does not exist") ||
		strings.Contains(message, "no such table: users")
}
