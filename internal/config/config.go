package config

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB opens the Postgres connection described by DATABASE_URL (or the
// discrete PG* variables) and enables gorm error translation so unique
// violations surface as gorm.ErrDuplicatedKey.
func InitDB() *gorm.DB {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			envOr("PGHOST", "localhost"),
			envOr("PGPORT", "5432"),
			envOr("PGUSER", "postgres"),
			os.Getenv("PGPASSWORD"),
			envOr("PGDATABASE", "finance"),
		)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}
	return db
}

// InitLogger configures the process logger from LOG_LEVEL and LOG_FORMAT.
func InitLogger() *logrus.Logger {
	logger := logrus.StandardLogger()

	level, err := logrus.ParseLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if envOr("LOG_FORMAT", "text") == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}

// UploadDir is where receipt files are stored.
func UploadDir() string {
	return envOr("UPLOAD_DIR", "./uploads")
}

// ListenAddr is the HTTP bind address.
func ListenAddr() string {
	return ":" + envOr("PORT", "8080")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
