// Package seed bootstraps the first admin account.
package seed

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/bondexsafety/backoffice/internal/config"
	identity "github.com/bondexsafety/backoffice/internal/identity/domain"
	"github.com/bondexsafety/backoffice/internal/identity/password"
)

// EnsureDefaultAdmin creates the configured admin user if it does not
// exist yet. It is a no-op when SEED_ADMIN_EMAIL is unset or the user
// already exists.
func EnsureDefaultAdmin(conn *gorm.DB, cfg config.Config) error {
	email := strings.ToLower(strings.TrimSpace(cfg.SeedAdminEmail))
	if email == "" {
		return nil
	}
	if strings.TrimSpace(cfg.SeedAdminPassword) == "" {
		return errors.New("SEED_ADMIN_PASSWORD is required when SEED_ADMIN_EMAIL is set")
	}

	var existing identity.User
	err := conn.First(&existing, "LOWER(email) = ?", email).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := password.Hash(cfg.SeedAdminPassword)
	if err != nil {
		return err
	}

	admin := identity.User{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: hash,
		Role:         identity.RoleAdmin,
		Status:       identity.StatusActive,
	}
	return conn.Create(&admin).Error
}
