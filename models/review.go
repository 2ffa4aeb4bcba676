package models

import "gorm.io/gorm"

type Review struct {
	gorm.Model
	UserID   uint   `gorm:"index;not null"`
	Name     string `gorm:"not null"`
	Rating   int    `gorm:"check:rating>=1 AND rating<=5"`
	Feedback string `gorm:"not null"`
}
