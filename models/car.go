package models

import (
	"strconv"
	"time"
)

type Car struct {
	ID           uint        `json:"id" gorm:"primaryKey"`
	Make         string      `json:"make" gorm:"not null;size:100;index"`
	Model        string      `json:"model" gorm:"not null;size:100"`
	Year         int         `json:"year" gorm:"not null;index"`
	Mileage      int         `json:"mileage" gorm:"not null"`
	Price        float64     `json:"price" gorm:"not null;index"`
	BodyType     string      `json:"bodyType" gorm:"not null;size:50"`
	Transmission string      `json:"transmission" gorm:"not null;size:50"`
	Condition    string      `json:"condition" gorm:"not null;size:50"`
	FuelType     string      `json:"fuelType" gorm:"not null;size:50"`
	EngineSize   string      `json:"engineSize" gorm:"not null;size:50"`
	Doors        int         `json:"doors" gorm:"not null"`
	Cylinders    int         `json:"cylinders" gorm:"not null"`
	Description  string      `json:"description" gorm:"type:text"`
	Images       StringSlice `json:"images"`
	IsFeatured   bool        `json:"isFeatured" gorm:"not null;index"`
	IsAvailable  bool        `json:"isAvailable" gorm:"not null;index"`
	CreatedAt    time.Time   `json:"createdAt" gorm:"index"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// CarSummary is the subset of a car embedded in testimonials.
type CarSummary struct {
	ID    uint   `json:"id"`
	Make  string `json:"make"`
	Model string `json:"model"`
	Year  int    `json:"year"`
}

func (CarSummary) TableName() string {
	return "cars"
}

// Title is the human-readable name of the car, e.g. "2021 Toyota Camry".
func (c *Car) Title() string {
	return strconv.Itoa(c.Year) + " " + c.Make + " " + c.Model
}
