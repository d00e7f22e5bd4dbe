package database

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"safetravels-api/models"
	"safetravels-api/utils"
)

// SeedData creates the initial admin account and a few sample cars on an
// empty database. It does nothing once any user exists.
func SeedData(db *gorm.DB, log zerolog.Logger) error {
	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return fmt.Errorf("count users: %w", err)
	}

	if userCount > 0 {
		log.Debug().Msg("database already has data, skipping seed")
		return nil
	}

	hash, err := utils.HashPassword("admin123")
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := models.User{
		Username: "admin",
		Email:    "admin@safetravelsmotors.com",
		Password: hash,
		Role:     models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	log.Info().Str("username", admin.Username).Msg("admin user created")

	for _, car := range sampleCars() {
		car := car
		if err := db.Create(&car).Error; err != nil {
			log.Warn().Err(err).Str("car", car.Title()).Msg("could not create sample car")
			continue
		}
		log.Info().Str("car", car.Title()).Msg("sample car created")
	}

	return nil
}

func sampleCars() []models.Car {
	return []models.Car{
		{
			Make:         "Toyota",
			Model:        "Camry",
			Year:         2022,
			Mileage:      15000,
			Price:        25000,
			BodyType:     "Sedan",
			Transmission: "Automatic",
			Condition:    "Used",
			FuelType:     "Petrol",
			EngineSize:   "2.5L",
			Doors:        4,
			Cylinders:    4,
			Description:  "Excellent condition Toyota Camry with low mileage. Perfect for daily commuting with great fuel efficiency.",
			Images: models.StringSlice{
				"https://images.unsplash.com/photo-1621007947382-bb3c3994e3fb?w=800",
				"https://images.unsplash.com/photo-1606664515524-ed2f786a0bd6?w=800",
			},
			IsFeatured:  true,
			IsAvailable: true,
		},
		{
			Make:         "Honda",
			Model:        "CR-V",
			Year:         2021,
			Mileage:      25000,
			Price:        28000,
			BodyType:     "SUV",
			Transmission: "Automatic",
			Condition:    "Used",
			FuelType:     "Petrol",
			EngineSize:   "1.5L Turbo",
			Doors:        5,
			Cylinders:    4,
			Description:  "Spacious Honda CR-V with excellent safety ratings. Perfect for families with plenty of cargo space.",
			Images: models.StringSlice{
				"https://images.unsplash.com/photo-1558618666-fcd25c85cd64?w=800",
				"https://images.unsplash.com/photo-1606664515524-ed2f786a0bd6?w=800",
			},
			IsFeatured:  true,
			IsAvailable: true,
		},
		{
			Make:         "BMW",
			Model:        "3 Series",
			Year:         2023,
			Mileage:      5000,
			Price:        45000,
			BodyType:     "Sedan",
			Transmission: "Automatic",
			Condition:    "New",
			FuelType:     "Petrol",
			EngineSize:   "2.0L Turbo",
			Doors:        4,
			Cylinders:    4,
			Description:  "Luxury BMW 3 Series with premium features and exceptional performance. Like new condition.",
			Images: models.StringSlice{
				"https://images.unsplash.com/photo-1555215695-3004980ad54e?w=800",
				"https://images.unsplash.com/photo-1606664515524-ed2f786a0bd6?w=800",
			},
			IsFeatured:  true,
			IsAvailable: true,
		},
	}
}
