package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DefaultLevel   = "Level 1"
	DefaultTotalXP = 1000
)

type User struct {
	gorm.Model
	Name                   string `gorm:"not null"`
	Email                  string `gorm:"unique;not null"`
	PasswordHash           string `gorm:"not null"`
	ProfilePicture         string
	Level                  string
	XP                     int
	TotalXP                float64
	PathwayRecommendations datatypes.JSONSlice[string]
	Preferences            datatypes.JSONMap
	LastActive             time.Time
}

// DefaultPreferences returns the preference set a fresh account starts with.
func DefaultPreferences() datatypes.JSONMap {
	return datatypes.JSONMap{
		"theme":         "light",
		"notifications": true,
		"language":      "en",
	}
}
