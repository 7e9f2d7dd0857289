package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/zulfuqarov/CarsTrack/database"
	"github.com/zulfuqarov/CarsTrack/logger"
	"github.com/zulfuqarov/CarsTrack/middlewares"
	"github.com/zulfuqarov/CarsTrack/routes"
	"github.com/zulfuqarov/CarsTrack/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"
)

// envInt reads an int env var with a default fallback.
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// newStorage picks the upload persistence strategy from STORAGE_DRIVER:
// "local" (default) writes under UPLOAD_DIR, "s3" pushes to the asset host.
func newStorage(log *zap.Logger) (storage.Storage, string, error) {
	if os.Getenv("STORAGE_DRIVER") == "s3" {
		s3, err := storage.NewS3(context.Background(), storage.S3Config{
			Bucket:          os.Getenv("S3_BUCKET"),
			Region:          os.Getenv("S3_REGION"),
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
			KeyPrefix:       os.Getenv("S3_KEY_PREFIX"),
		}, log)
		return s3, "", err
	}

	dir := os.Getenv("UPLOAD_DIR")
	if dir == "" {
		dir = "./uploads"
	}
	local, err := storage.NewLocal(dir, os.Getenv("PUBLIC_BASE_URL"), log)
	return local, dir, err
}

func main() {
	log, err := logger.New()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(log)
	defer log.Sync()

	// ---- Database
	database.Connect()
	database.AutoMigrate()

	// ---- Upload storage strategy
	store, uploadDir, err := newStorage(log)
	if err != nil {
		log.Fatal("storage setup failed", zap.Error(err))
	}

	// ---- Limits (configurable via env)
	maxUploadSize := int64(envInt("MAX_UPLOAD_SIZE_MB", 5)) * 1024 * 1024
	// Body limit must fit a whole multipart batch, not one file.
	bodyLimitBytes := envInt("BODY_LIMIT_BYTES", 0)
	if bodyLimitBytes <= 0 {
		bodyLimitBytes = envInt("BODY_LIMIT_MB", 64) * 1024 * 1024
	}

	// ---- Fiber app with global error handler + body limit
	app := fiber.New(fiber.Config{
		ErrorHandler: middlewares.ErrorHandler,
		BodyLimit:    bodyLimitBytes,
	})

	// ---- CORS (public site + admin panel origins)
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: false, // using Bearer tokens, not cookies
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Idempotency-Key",
	}))

	// ---- Global rate limiter
	rlMax := envInt("RATE_LIMIT_MAX", 60)
	rlWindow := time.Duration(envInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second
	app.Use(limiter.New(limiter.Config{
		Max:        rlMax,
		Expiration: rlWindow,
	}))

	// ---- Locally stored images are served straight from disk
	if uploadDir != "" {
		app.Static("/uploads", uploadDir)
	}

	// ---- Routes
	routes.Register(app, store, maxUploadSize)

	// ---- Start
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Info("API server starting", zap.String("port", port))
	if err := app.Listen(":" + port); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
