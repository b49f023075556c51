package models

import "time"

// Subscription types and statuses.
const (
	SubscriptionMonthly = "monthly"
	SubscriptionYearly  = "yearly"

	SubscriberStatusActive    = "active"
	SubscriberStatusExpired   = "expired"
	SubscriberStatusCancelled = "cancelled"
)

// Subscriber represents a paying subscriber.
type Subscriber struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Email string `gorm:"type:text;not null;uniqueIndex"` // Unique email address.
	Name  string `gorm:"type:text;not null"`             // Subscriber name.

	SubscriptionType string    `gorm:"type:text;not null"` // monthly or yearly.
	StartDate        time.Time `gorm:"not null"`           // Subscription start.
	EndDate          time.Time `gorm:"not null"`           // Subscription end.
	Status           string    `gorm:"type:text;not null"` // active, expired, cancelled.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
