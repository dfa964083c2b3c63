package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"personal-finance-backend/internal/config"
	handler "personal-finance-backend/internal/handlers"
	"personal-finance-backend/internal/middleware"
	"personal-finance-backend/internal/repository"
	"personal-finance-backend/internal/services/budgets"
	"personal-finance-backend/internal/services/categories"
	"personal-finance-backend/internal/services/importer"
	"personal-finance-backend/internal/services/matching"
	"personal-finance-backend/internal/services/receipts"
	"personal-finance-backend/internal/services/transactions"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, log *logrus.Logger) {
	userRepo := repository.NewUserRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	receiptRepo := repository.NewReceiptRepository(db)
	budgetRepo := repository.NewBudgetRepository(db)

	nameCache := categories.NewNameCache(categoryRepo)

	categoryService := categories.NewService(categoryRepo, transactionRepo, nameCache, log)
	transactionService := transactions.NewService(transactionRepo, log)
	importService := importer.NewService(transactionRepo, nameCache, log)
	receiptService := receipts.NewService(
		receiptRepo,
		transactionRepo,
		&receipts.StubExtractor{},
		config.UploadDir(),
		log,
	)
	budgetService := budgets.NewService(budgetRepo, categoryRepo, transactionRepo, log)
	matchEngine := matching.NewEngine(transactionRepo, log)

	authHandler := handler.NewAuthHandler(userRepo)
	transactionHandler := handler.NewTransactionHandler(transactionService, importService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	receiptHandler := handler.NewReceiptHandler(receiptService, matchEngine)
	budgetHandler := handler.NewBudgetHandler(budgetService)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.RequireAuth(userRepo))

	tx := authed.Group("/transactions")
	tx.POST("/import", transactionHandler.Import)
	tx.GET("/statistics", transactionHandler.Statistics)
	tx.GET("", transactionHandler.List)
	tx.POST("", transactionHandler.Create)
	tx.GET("/:id", transactionHandler.Get)
	tx.PATCH("/:id", transactionHandler.Update)
	tx.DELETE("/:id", transactionHandler.Delete)

	cats := authed.Group("/categories")
	cats.GET("", categoryHandler.List)
	cats.GET("/tree", categoryHandler.Tree)
	cats.GET("/tax", categoryHandler.TaxCategories)
	cats.POST("", categoryHandler.Create)
	cats.PATCH("/:id", categoryHandler.Update)
	cats.DELETE("/:id", categoryHandler.Delete)

	rec := authed.Group("/receipts")
	rec.POST("/upload", receiptHandler.Upload)
	rec.GET("", receiptHandler.List)
	rec.GET("/:id", receiptHandler.Get)
	rec.GET("/:id/matches", receiptHandler.Matches)
	rec.POST("/:id/link", receiptHandler.Link)
	rec.POST("/:id/unlink", receiptHandler.Unlink)
	rec.DELETE("/:id", receiptHandler.Delete)

	bud := authed.Group("/budgets")
	bud.GET("", budgetHandler.List)
	bud.POST("", budgetHandler.Create)
	bud.GET("/:id", budgetHandler.Get)
	bud.GET("/:id/progress", budgetHandler.Progress)
	bud.PATCH("/:id", budgetHandler.Update)
	bud.DELETE("/:id", budgetHandler.Delete)
}
