package models

import (
	"time"
)

type BlogPost struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	Title         string     `json:"title" gorm:"not null;size:200"`
	Slug          string     `json:"slug" gorm:"uniqueIndex;not null;size:255"`
	Content       string     `json:"content,omitempty" gorm:"type:text;not null"`
	Excerpt       string     `json:"excerpt" gorm:"size:500"`
	FeaturedImage *string    `json:"featuredImage" gorm:"size:500"`
	Author        string     `json:"author" gorm:"not null;size:100"`
	Published     bool       `json:"published" gorm:"not null;index"`
	PublishedAt   *time.Time `json:"publishedAt"`
	CreatedAt     time.Time  `json:"createdAt" gorm:"index"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}
