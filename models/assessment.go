package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AssessmentAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type Assessment struct {
	gorm.Model
	UserID      uint `gorm:"index;not null"`
	Questions   datatypes.JSONSlice[AssessmentAnswer]
	TotalScore  int
	CompletedAt time.Time
}
