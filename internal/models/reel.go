package models

import "time"

// Reel represents a highlight video reel for a player.
type Reel struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	PlayerID uint64  `gorm:"not null;index"`    // Owning player ID.
	Player   *Player `gorm:"foreignKey:PlayerID"` // Owning player.

	Title        string  `gorm:"type:text;not null"` // Reel title.
	ThumbnailURL string  `gorm:"type:text;not null"` // Thumbnail image URL.
	VideoURL     string  `gorm:"type:text;not null"` // Video URL.
	Duration     float64 `gorm:"not null"`           // Duration in seconds.
	ViewCount    int64   `gorm:"not null;default:0"` // View counter.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
