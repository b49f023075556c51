package models

import (
	"time"

	"gorm.io/datatypes"
)

// League represents a sports league.
type League struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name     string `gorm:"type:text;not null"` // League name.
	Category string `gorm:"type:text;not null"` // baseball, football, basketball, etc.
	Country  string `gorm:"type:text;not null"` // Home country.
	LogoURL  string `gorm:"type:text;not null"` // Logo image URL.

	Popularity   int            `gorm:"not null;default:0"`               // View count or rating.
	FoundedDate  *time.Time     `gorm:""`                                 // Founding date.
	Headquarters string         `gorm:"type:text"`                        // Headquarters location.
	Commissioner string         `gorm:"type:text"`                        // Commissioner name.
	Divisions    datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"` // Division names.
	NumTeams     int            `gorm:"not null;default:0"`               // Cached team count.
	Enabled      bool           `gorm:"not null;default:true"`            // Visibility flag.

	Teams   []Team   `gorm:"foreignKey:LeagueID"` // Teams in the league.
	Players []Player `gorm:"foreignKey:LeagueID"` // Players in the league.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// Team represents a team within a league.
type Team struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name     string  `gorm:"type:text;not null"`  // Team name.
	LeagueID uint64  `gorm:"not null;index"`      // Owning league ID.
	League   *League `gorm:"foreignKey:LeagueID"` // Owning league.
	LogoURL  string  `gorm:"type:text;not null"`  // Logo image URL.

	Popularity int `gorm:"not null;default:0"` // View count or rating.

	Players []Player `gorm:"foreignKey:TeamID"` // Players on the team.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// Player represents a player on a team.
type Player struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name     string  `gorm:"type:text;not null"`  // Player name.
	TeamID   uint64  `gorm:"not null;index"`      // Owning team ID.
	Team     *Team   `gorm:"foreignKey:TeamID"`   // Owning team.
	LeagueID uint64  `gorm:"not null;index"`      // Owning league ID.
	League   *League `gorm:"foreignKey:LeagueID"` // Owning league.

	Position     string     `gorm:"type:text;not null"`                // Field position.
	JerseyNumber string     `gorm:"type:text;not null"`                // Jersey number.
	ProfileImage string     `gorm:"type:text;not null"`                // Headshot URL.
	DOB          *time.Time `gorm:""`                                  // Date of birth.
	College      string     `gorm:"type:text"`                         // College attended.
	HeightWeight string     `gorm:"type:text"`                         // Height/weight string.
	BatThrow     string     `gorm:"type:text"`                         // Batting/throwing hand.
	Experience   string     `gorm:"type:text"`                         // Years of experience.
	Birthplace   string     `gorm:"type:text"`                         // Birthplace.
	Status       string     `gorm:"type:text;not null;default:Active"` // Roster status.

	Reels []Reel `gorm:"foreignKey:PlayerID"` // Highlight reels.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
