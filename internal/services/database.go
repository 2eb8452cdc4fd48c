package services

import (
	"encoding/json"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"acp_checkout_echo/internal/models"
)

// InitDB initializes the database connection with connection pooling
func InitDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	// Get underlying sql.DB to configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// Connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Println("Database connection established")
	return db, nil
}

// AutoMigrate runs database migrations for all models. This is the schema
// contract for the process: a failure here is a startup failure, handlers
// never probe the schema per request.
func AutoMigrate(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		&models.Product{},
		&models.CheckoutSession{},
		&models.Order{},
		&models.GatewayEventHistory{},
	)
	if err != nil {
		return err
	}

	log.Println("Database migrations completed")
	return nil
}

type productFeed struct {
	Products []models.Product `json:"products"`
}

// SeedProducts loads the demo product feed into an empty products table.
// A non-empty table is left untouched.
func SeedProducts(db *gorm.DB, feedPath string) error {
	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	raw, err := os.ReadFile(feedPath)
	if err != nil {
		return err
	}

	var feed productFeed
	if err := json.Unmarshal(raw, &feed); err != nil {
		return err
	}
	if len(feed.Products) == 0 {
		return nil
	}

	if err := db.Create(&feed.Products).Error; err != nil {
		return err
	}

	log.Printf("Seeded %d products from %s", len(feed.Products), feedPath)
	return nil
}
