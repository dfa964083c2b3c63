package main

import (
	"time"

	"personal-finance-backend/internal/config"
	"personal-finance-backend/internal/models"
	"personal-finance-backend/internal/parser"
	"personal-finance-backend/internal/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env; missing file means we rely on the system env.
	_ = godotenv.Load()

	log := config.InitLogger()
	parser.SetLogger(log)

	db := config.InitDB()

	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.TaxCategory{},
		&models.Transaction{},
		&models.Receipt{},
		&models.Budget{},
	); err != nil {
		log.WithError(err).Fatal("database migration failed")
	}

	r := gin.Default()
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, db, log)

	addr := config.ListenAddr()
	log.WithField("addr", addr).Info("starting server")
	if err := r.Run(addr); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}
