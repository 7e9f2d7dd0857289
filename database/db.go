package database

import (
	"fmt"
	"os"

	"github.com/zulfuqarov/CarsTrack/models"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect() {
	if err := godotenv.Load(); err != nil {
		zap.L().Warn("no .env file found, relying on process environment")
	}

	host := os.Getenv("DB_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("DB_PORT")
	if port == "" {
		port = "5432"
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		host, os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"), os.Getenv("DB_NAME"), port)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		zap.L().Error("database connection failed", zap.Error(err))
		panic("Could not connect to database")
	}
}

func AutoMigrate() {
	DB.AutoMigrate(&models.User{}, &models.Customer{}, &models.IdempotencyKey{})
}

// RequestDB returns the per-request transaction opened by middlewares.Tx
// when one is present, otherwise the shared connection. Handlers should
// always go through this so authenticated mutations stay atomic.
func RequestDB(c *fiber.Ctx) *gorm.DB {
	if tx, ok := c.Locals("tx").(*gorm.DB); ok && tx != nil {
		return tx
	}
	return DB
}
