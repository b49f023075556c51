package models

import "time"

// End-user account statuses.
const (
	UserStatusActive    = "active"
	UserStatusInactive  = "inactive"
	UserStatusSuspended = "suspended"
)

// End-user coarse roles.
const (
	UserRoleUser    = "user"
	UserRolePremium = "premium"
)

// User represents an end-user account stored in the database.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UUID     string `gorm:"type:text;not null;uniqueIndex"` // External-facing identifier.
	Email    string `gorm:"type:text;not null;uniqueIndex"` // Unique email address.
	Username string `gorm:"type:text;not null;uniqueIndex"` // Unique login name.
	FullName string `gorm:"type:text;not null"`             // Display name.
	Password string `gorm:"type:text;not null"`             // Hashed password.

	ProfileImage string `gorm:"type:text"` // Avatar URL.
	Bio          string `gorm:"type:text"` // Profile bio.

	Status string `gorm:"type:text;not null;default:active"` // active, inactive, suspended.
	Role   string `gorm:"type:text;not null;default:user"`   // user or premium.

	EmailVerified bool `gorm:"not null;default:false"` // Signup OTP verification state.

	RegistrationDate time.Time  `gorm:"not null"`                // Signup timestamp.
	LastLogin        *time.Time `gorm:""`                        // Last successful login.
	CreatedAt        time.Time  `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt        time.Time  `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// IsActive reports whether the account may authenticate.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}
