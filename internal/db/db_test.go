package db

import (
	"path/filepath"
	"testing"

	"github.com/gambitsports/gambit-admin/internal/models"
	"github.com/gambitsports/gambit-admin/internal/permissions"
)

func TestOpenAndMigrateSQLite(t *testing.T) {
	conn, errOpen := Open(filepath.Join(t.TempDir(), "gambit.db"))
	if errOpen != nil {
		t.Fatalf("open: %v", errOpen)
	}
	if !IsSQLite(conn) {
		t.Fatalf("dialect = %q, want sqlite", DialectName(conn))
	}
	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	var role models.Role
	if errFind := conn.Where("name = ?", SuperAdminRoleName).Take(&role).Error; errFind != nil {
		t.Fatalf("seeded role missing: %v", errFind)
	}
	set := permissions.Parse(role.Permissions)
	if !set.Has(permissions.TagUsers) || !set.Has(permissions.TagRoles) {
		t.Fatalf("super admin role lacks wildcard grants: %v", set.Tags())
	}

	// Migrate is idempotent and must not duplicate the seed.
	if errAgain := Migrate(conn); errAgain != nil {
		t.Fatalf("second migrate: %v", errAgain)
	}
	var count int64
	if errCount := conn.Model(&models.Role{}).Where("name = ?", SuperAdminRoleName).Count(&count).Error; errCount != nil {
		t.Fatalf("count roles: %v", errCount)
	}
	if count != 1 {
		t.Fatalf("seed role count = %d, want 1", count)
	}
}

func TestOpenEmptyDSN(t *testing.T) {
	if _, errOpen := Open("  "); errOpen == nil {
		t.Fatalf("expected error for empty dsn")
	}
}

func TestCaseInsensitiveLikeExpr(t *testing.T) {
	conn, errOpen := Open(filepath.Join(t.TempDir(), "gambit.db"))
	if errOpen != nil {
		t.Fatalf("open: %v", errOpen)
	}
	if got := CaseInsensitiveLikeExpr(conn, "email"); got != "LOWER(email) LIKE ?" {
		t.Fatalf("expr = %q", got)
	}
	if got := NormalizeLikePattern(conn, "%Smith%"); got != "%smith%" {
		t.Fatalf("pattern = %q", got)
	}
}
