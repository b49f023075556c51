package models

import (
	"time"

	"github.com/gambitsports/gambit-admin/internal/permissions"
	"gorm.io/datatypes"
)

// Admin represents an administrator account stored in the database.
type Admin struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Username string `gorm:"type:text;not null;uniqueIndex"` // Unique login name.
	Email    string `gorm:"type:text;not null;uniqueIndex"` // Unique email address.
	Name     string `gorm:"type:text;not null"`             // Display name.
	Password string `gorm:"type:text;not null"`             // Hashed password.

	IsActive bool `gorm:"not null;default:true"` // Whether the admin can sign in.

	Roles []*Role `gorm:"many2many:admin_roles"` // Assigned roles.

	LastLogin *time.Time `gorm:""`                        // Last successful login.
	CreatedAt time.Time  `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time  `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// Grants returns the union of permission grants across all assigned roles.
func (a *Admin) Grants() permissions.Set {
	var set permissions.Set
	for _, role := range a.Roles {
		if role == nil {
			continue
		}
		set |= role.Grants()
	}
	return set
}

// Role is a named bundle of permission tags assignable to admins.
type Role struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name        string         `gorm:"type:text;not null;uniqueIndex"`   // Unique role name.
	Description string         `gorm:"type:text"`                        // Free-text description.
	Permissions datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"` // Granted permission tags.

	Admins []*Admin `gorm:"many2many:admin_roles"` // Admins holding this role.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// Grants parses the stored permission tags into a bitset.
func (r *Role) Grants() permissions.Set {
	return permissions.Parse(r.Permissions)
}

// Tags returns the stored permission tags in definition order.
func (r *Role) Tags() []permissions.Tag {
	return r.Grants().Tags()
}
