package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"safetravels-api/logger"
	"safetravels-api/models"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

func dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverMySQL:
		return mysql.Open(dsn), nil
	case DriverPostgres:
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func Initialize(driver, dsn string, log zerolog.Logger) (*gorm.DB, error) {
	d, err := dialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(d, &gorm.Config{
		Logger:                                   logger.NewGormLogger(log),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// Ping checks the connection within ctx.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func Migrate(db *gorm.DB, log zerolog.Logger) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Car{},
		&models.BlogPost{},
		&models.Testimonial{},
		&models.ContactInquiry{},
		&models.NewsletterSubscription{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	addCustomIndexes(db, log)
	return nil
}

// addCustomIndexes creates composite indexes for the public listing
// queries. Failures are logged; the API works without them.
func addCustomIndexes(db *gorm.DB, log zerolog.Logger) {
	indexes := []struct {
		table, name, columns string
	}{
		{"cars", "idx_cars_featured_available_created", "is_featured, is_available, created_at"},
		{"blog_posts", "idx_blog_posts_published_created", "published, created_at"},
		{"testimonials", "idx_testimonials_approved_created", "is_approved, created_at"},
		{"contact_inquiries", "idx_contact_inquiries_read_created", "is_read, created_at"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.table, idx.name) {
			continue
		}
		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			log.Warn().Err(err).Str("index", idx.name).Msg("could not create index")
		}
	}
}
