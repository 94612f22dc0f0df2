package database

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/presencematic/whatsapp-orders/internal/models"
)

// Connect opens the Postgres order mirror and migrates its schema
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	log.Println("✅ Database connected successfully!")

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the tables the bot writes to
func Migrate(db *gorm.DB) error {
	log.Println("🔄 Running database migrations...")
	if err := db.AutoMigrate(&models.Order{}); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	log.Println("✅ Database migrations completed!")
	return nil
}

// Ping reports whether the database still answers
func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
