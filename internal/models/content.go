package models

import "time"

// Content page types.
const (
	PageTypePrivacyPolicy   = "privacy_policy"
	PageTypeTermsConditions = "terms_conditions"
)

// FAQ represents a frequently-asked question entry.
type FAQ struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Question string `gorm:"type:text;not null"` // Question text.
	Answer   string `gorm:"type:text;not null"` // Answer text.

	Order       int  `gorm:"column:display_order;not null;default:0"` // Display order.
	IsPublished bool `gorm:"not null;default:true"`                   // Visibility flag.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// ContentPage represents a static content page keyed by page type.
type ContentPage struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	PageType string `gorm:"type:text;not null;uniqueIndex"` // privacy_policy, terms_conditions.
	Title    string `gorm:"type:text;not null"`             // Page title.
	Content  string `gorm:"type:text;not null"`             // Page body.

	IsPublished bool `gorm:"not null;default:true"` // Visibility flag.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
