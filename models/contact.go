package models

import (
	"time"
)

type ContactInquiry struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null;size:100"`
	Email     string    `json:"email" gorm:"not null;size:255"`
	Phone     *string   `json:"phone" gorm:"size:20"`
	Subject   string    `json:"subject" gorm:"not null;size:200"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	CarID     *uint     `json:"carId" gorm:"index"`
	IsRead    bool      `json:"isRead" gorm:"not null;index"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type NewsletterSubscription struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null;size:255"`
	IsActive  bool      `json:"isActive" gorm:"not null;index"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`
}
