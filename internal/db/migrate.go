package db

import (
	"errors"
	"fmt"

	"github.com/gambitsports/gambit-admin/internal/models"
	"github.com/gambitsports/gambit-admin/internal/permissions"
	"gorm.io/gorm"
)

// SuperAdminRoleName is the seeded role carrying the wildcard permission.
const SuperAdminRoleName = "Super Admin"

// Migrate runs schema migrations and seeds the built-in roles.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	if errAutoMigrate := conn.AutoMigrate(
		&models.Role{},
		&models.Admin{},
		&models.User{},
		&models.League{},
		&models.Team{},
		&models.Player{},
		&models.Reel{},
		&models.Subscriber{},
		&models.Notification{},
		&models.FAQ{},
		&models.ContentPage{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}
	return ensureSuperAdminRole(conn)
}

// ensureSuperAdminRole seeds the wildcard role when missing.
func ensureSuperAdminRole(conn *gorm.DB) error {
	var role models.Role
	errFind := conn.Where("name = ?", SuperAdminRoleName).Take(&role).Error
	if errFind == nil {
		return nil
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return fmt.Errorf("db: find super admin role: %w", errFind)
	}
	grants, errMarshal := permissions.Marshal([]string{string(permissions.TagAll)})
	if errMarshal != nil {
		return fmt.Errorf("db: marshal super admin grants: %w", errMarshal)
	}
	role = models.Role{
		Name:        SuperAdminRoleName,
		Description: "Full access to every admin module",
		Permissions: grants,
	}
	if errCreate := conn.Create(&role).Error; errCreate != nil {
		return fmt.Errorf("db: seed super admin role: %w", errCreate)
	}
	return nil
}
