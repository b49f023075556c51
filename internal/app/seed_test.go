package app

import (
	"path/filepath"
	"testing"

	"github.com/gambitsports/gambit-admin/internal/db"
	"github.com/gambitsports/gambit-admin/internal/models"
	"github.com/gambitsports/gambit-admin/internal/permissions"
	"github.com/gambitsports/gambit-admin/internal/security"
	"gorm.io/gorm"
)

func openSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, errOpen := db.Open(filepath.Join(t.TempDir(), "seed.db"))
	if errOpen != nil {
		t.Fatalf("open: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return conn
}

func TestEnsureInitialAdminFromEnv(t *testing.T) {
	conn := openSeedDB(t)
	t.Setenv(EnvInitAdminUsername, "root")
	t.Setenv(EnvInitAdminEmail, "Root@Example.com")
	t.Setenv(EnvInitAdminPassword, "s3cret-pass")

	if errEnsure := EnsureInitialAdmin(conn); errEnsure != nil {
		t.Fatalf("ensure: %v", errEnsure)
	}

	var admin models.Admin
	if errFind := conn.Preload("Roles").Where("username = ?", "root").Take(&admin).Error; errFind != nil {
		t.Fatalf("admin missing: %v", errFind)
	}
	if admin.Email != "root@example.com" {
		t.Fatalf("email = %q, want lowercased", admin.Email)
	}
	if !admin.IsActive {
		t.Fatalf("seeded admin must be active")
	}
	if !security.CheckPassword("s3cret-pass", admin.Password) {
		t.Fatalf("stored hash does not match password")
	}
	if !admin.Grants().Has(permissions.TagRoles) {
		t.Fatalf("seeded admin should hold the wildcard role")
	}
}

func TestEnsureInitialAdminNoEnv(t *testing.T) {
	conn := openSeedDB(t)
	t.Setenv(EnvInitAdminUsername, "")
	t.Setenv(EnvInitAdminPassword, "")

	if errEnsure := EnsureInitialAdmin(conn); errEnsure != nil {
		t.Fatalf("ensure: %v", errEnsure)
	}
	var count int64
	if errCount := conn.Model(&models.Admin{}).Count(&count).Error; errCount != nil {
		t.Fatalf("count: %v", errCount)
	}
	if count != 0 {
		t.Fatalf("admin count = %d, want 0", count)
	}
}

func TestEnsureInitialAdminSkipsWhenAdminsExist(t *testing.T) {
	conn := openSeedDB(t)
	if errCreate := CreateAdmin(conn, "existing", "existing@example.com", "pw-existing"); errCreate != nil {
		t.Fatalf("create: %v", errCreate)
	}

	t.Setenv(EnvInitAdminUsername, "second")
	t.Setenv(EnvInitAdminPassword, "pw-second")
	if errEnsure := EnsureInitialAdmin(conn); errEnsure != nil {
		t.Fatalf("ensure: %v", errEnsure)
	}

	var count int64
	if errCount := conn.Model(&models.Admin{}).Count(&count).Error; errCount != nil {
		t.Fatalf("count: %v", errCount)
	}
	if count != 1 {
		t.Fatalf("admin count = %d, want 1", count)
	}
}
