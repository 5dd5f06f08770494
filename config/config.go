package config

import (
	"fmt"
	"log"
	"os"

	"github.com/S-A-M-22/BiteBuilder-sub000/models"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	DB    *gorm.DB
	Log   = zap.NewNop()
	Redis *redis.Client
)

func InitDB() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}
}

// Migrate keeps the schema in sync. Split out so tests can run it against
// their own database handle.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Profile{},
		&models.Nutrient{},
		&models.Product{},
		&models.ProductNutrient{},
		&models.SavedProduct{},
		&models.Meal{},
		&models.MealItem{},
		&models.EatenMeal{},
		&models.Goal{},
		&models.GoalNutrient{},
		&models.OTPCode{},
	)
}

func InitLogger() {
	var err error
	if os.Getenv("GIN_MODE") == "release" {
		Log, err = zap.NewProduction()
	} else {
		Log, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Logger init failed: %v", err)
	}
}

// InitRedis wires the search cache. Redis is optional: without REDIS_ADDR the
// catalog search simply fetches through on every call.
func InitRedis() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		Log.Info("REDIS_ADDR not set, search caching disabled")
		return
	}
	Redis = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
}
