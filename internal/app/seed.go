package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gambitsports/gambit-admin/internal/db"
	"github.com/gambitsports/gambit-admin/internal/models"
	"github.com/gambitsports/gambit-admin/internal/security"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Environment variables consulted when seeding the first admin account.
const (
	EnvInitAdminUsername = "INIT_ADMIN_USERNAME"
	EnvInitAdminEmail    = "INIT_ADMIN_EMAIL"
	EnvInitAdminPassword = "INIT_ADMIN_PASSWORD"
)

// EnsureInitialAdmin creates the first admin from env vars when the admins
// table is empty. It is a no-op once any admin exists or when the env vars
// are unset.
func EnsureInitialAdmin(conn *gorm.DB) error {
	var count int64
	if errCount := conn.Model(&models.Admin{}).Count(&count).Error; errCount != nil {
		return fmt.Errorf("app: count admins: %w", errCount)
	}
	if count > 0 {
		return nil
	}

	username := strings.TrimSpace(os.Getenv(EnvInitAdminUsername))
	password := os.Getenv(EnvInitAdminPassword)
	if username == "" || password == "" {
		log.Warn("no admins exist and no initial admin env vars set")
		return nil
	}
	email := strings.ToLower(strings.TrimSpace(os.Getenv(EnvInitAdminEmail)))
	if email == "" {
		email = username + "@localhost"
	}

	return CreateAdmin(conn, username, email, password)
}

// CreateAdmin creates an active admin holding the super admin role.
func CreateAdmin(conn *gorm.DB, username, email, password string) error {
	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		return fmt.Errorf("app: hash admin password: %w", errHash)
	}

	var role models.Role
	if errFind := conn.Where("name = ?", db.SuperAdminRoleName).Take(&role).Error; errFind != nil {
		return fmt.Errorf("app: load super admin role: %w", errFind)
	}

	now := time.Now().UTC()
	admin := models.Admin{
		Username:  username,
		Email:     email,
		Name:      username,
		Password:  hash,
		IsActive:  true,
		Roles:     []*models.Role{&role},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if errCreate := conn.Create(&admin).Error; errCreate != nil {
		return fmt.Errorf("app: create admin: %w", errCreate)
	}
	log.Infof("created initial admin %q", username)
	return nil
}
