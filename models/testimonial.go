package models

import (
	"time"
)

const DefaultRating = 5

type Testimonial struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	Name       string      `json:"name" gorm:"not null;size:100"`
	Email      *string     `json:"email" gorm:"size:255"`
	Content    string      `json:"content" gorm:"type:text;not null"`
	Rating     int         `json:"rating" gorm:"not null"`
	CarID      *uint       `json:"carId" gorm:"index"`
	IsApproved bool        `json:"isApproved" gorm:"not null;index"`
	CreatedAt  time.Time   `json:"createdAt" gorm:"index"`
	UpdatedAt  time.Time   `json:"updatedAt"`
	Car        *CarSummary `json:"car,omitempty" gorm:"foreignKey:CarID"`
}
