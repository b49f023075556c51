package models

import "time"

// Notification target types.
const (
	NotificationTargetAll  = "all"
	NotificationTargetUser = "user"
)

// Notification represents a push notification to users.
type Notification struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Title          string `gorm:"type:text;not null"` // Notification title.
	Message        string `gorm:"type:text;not null"` // Notification body.
	DestinationURL string `gorm:"type:text;not null"` // Deep link target.
	ImageURL       string `gorm:"type:text"`          // Optional image URL.
	IconURL        string `gorm:"type:text"`          // Optional icon URL.

	TargetType   string  `gorm:"type:text;not null;default:all"` // all or user.
	TargetUserID *uint64 `gorm:"index"`                          // Target user when scoped.
	Sent         bool    `gorm:"not null;default:false"`         // Dispatch state.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
