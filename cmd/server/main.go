package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/yuditriaji/atelie-lacos/internal/auth"
	"github.com/yuditriaji/atelie-lacos/internal/config"
	"github.com/yuditriaji/atelie-lacos/internal/customer"
	"github.com/yuditriaji/atelie-lacos/internal/dashboard"
	"github.com/yuditriaji/atelie-lacos/internal/order"
	"github.com/yuditriaji/atelie-lacos/internal/product"
	"github.com/yuditriaji/atelie-lacos/internal/reports"
	"github.com/yuditriaji/atelie-lacos/internal/settings"
	"github.com/yuditriaji/atelie-lacos/internal/web"
	"github.com/yuditriaji/atelie-lacos/pkg/activitylog"
	"github.com/yuditriaji/atelie-lacos/pkg/database"
	"github.com/yuditriaji/atelie-lacos/pkg/email"
	"github.com/yuditriaji/atelie-lacos/pkg/middleware"
	"github.com/yuditriaji/atelie-lacos/pkg/session"
	"github.com/yuditriaji/atelie-lacos/pkg/storage"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	cfg := config.Load()
	if err := cfg.Check(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := database.Connect(cfg.DSN(), !cfg.IsProduction())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	hub := session.NewHub()
	stopWatch := activitylog.NewLogger(db).Watch(hub)
	defer stopWatch()

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Issuer:         "atelie-lacos",
		Secret:         cfg.JWTSecret,
		AccessTTLMin:   cfg.AccessTokenTTLMin,
		RefreshTTLDays: cfg.RefreshTokenTTLDays,
	})

	// Setup Gin router
	r := gin.Default()
	r.Use(middleware.CORS())

	bucket, err := openBucket(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	if local, ok := bucket.(*storage.LocalBucket); ok {
		r.Static(local.Route(), local.Dir())
	}

	mailer := email.NewEmailService(cfg.ResendAPIKey, cfg.EmailFromAddress)
	if !mailer.IsConfigured() {
		log.Println("RESEND_API_KEY not set, sending orders by email is disabled")
	}

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})

		// Auth routes (public)
		authHandler := auth.NewHandler(db, jwtManager, hub, cfg)
		v1.POST("/auth/register", authHandler.Register)
		v1.POST("/auth/login", authHandler.Login)
		v1.POST("/auth/refresh", authHandler.RefreshToken)
		if cfg.DevAdminEnabled() {
			log.Printf("Dev admin login enabled for %s", auth.DevAdminEmail)
			v1.POST("/auth/dev-login", authHandler.DevLogin)
		}

		// Google OAuth routes
		v1.GET("/auth/google", authHandler.GoogleLogin)
		v1.GET("/auth/google/callback", authHandler.GoogleCallback)

		// Protected routes
		protected := v1.Group("")
		protected.Use(middleware.AuthRequired(jwtManager))
		{
			protected.GET("/auth/me", authHandler.GetMe)
			protected.POST("/auth/logout", authHandler.Logout)

			uploads := middleware.UploadLimit(cfg.MaxUploadBytes())

			// Dashboard routes
			dashboardHandler := dashboard.NewHandler(db)
			protected.GET("/dashboard/stats", dashboardHandler.GetStats)
			protected.GET("/dashboard/top-products", dashboardHandler.GetTopProducts)
			protected.GET("/dashboard/recent-orders", dashboardHandler.GetRecentOrders)

			// Customer routes
			customerHandler := customer.NewHandler(db)
			protected.GET("/customers", customerHandler.List)
			protected.POST("/customers", customerHandler.Create)
			protected.GET("/customers/export", customerHandler.Export)
			protected.GET("/customers/import/template", customerHandler.DownloadTemplate)
			protected.POST("/customers/import", uploads, customerHandler.Import)
			protected.GET("/customers/:id", customerHandler.Get)
			protected.PUT("/customers/:id", customerHandler.Update)
			protected.GET("/customers/:id/stats", customerHandler.GetStats)

			// Product routes
			productHandler := product.NewHandler(db, bucket)
			protected.GET("/products", productHandler.List)
			protected.POST("/products", productHandler.Create)
			protected.POST("/products/quote", productHandler.Quote)
			protected.POST("/products/materials/validate", productHandler.AddMaterial)
			protected.POST("/products/materials/remove", productHandler.RemoveMaterial)
			protected.GET("/products/:id", productHandler.Get)
			protected.PUT("/products/:id", productHandler.Update)
			protected.POST("/products/:id/photo", uploads, productHandler.UploadPhoto)

			// Order routes
			orderHandler := order.NewHandler(db, order.NewChromeRenderer(cfg.ChromePath), mailer)
			protected.GET("/orders", orderHandler.List)
			protected.POST("/orders", orderHandler.Create)
			protected.POST("/orders/quote", orderHandler.Quote)
			protected.POST("/orders/lines", orderHandler.EditLines)
			protected.GET("/orders/export", orderHandler.Export)
			protected.GET("/orders/:id", orderHandler.Get)
			protected.PATCH("/orders/:id/status", orderHandler.UpdateStatus)
			protected.GET("/orders/:id/print", orderHandler.Print)
			protected.GET("/orders/:id/pdf", orderHandler.PDF)
			protected.POST("/orders/:id/send", orderHandler.Send)

			// Store settings routes
			settingsHandler := settings.NewHandler(db, bucket)
			protected.GET("/settings", settingsHandler.Get)
			protected.PUT("/settings", settingsHandler.Update)
			protected.POST("/settings/logo", uploads, settingsHandler.UploadLogo)

			// Reports routes
			reportsHandler := reports.NewHandler(db)
			protected.GET("/reports/sales", reportsHandler.GetSalesReport)
			protected.GET("/reports/products", reportsHandler.GetProductSalesReport)
			protected.GET("/reports/products/export", reportsHandler.ExportProductSales)
			protected.GET("/activity-logs", reportsHandler.GetActivityLogs)
		}
	}

	// Everything else is the app bundle
	r.NoRoute(web.NewHandler(cfg.StaticDir).Serve)

	log.Printf("Server starting on %s", cfg.Addr())
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// openBucket picks the image storage named by STORAGE_DRIVER
func openBucket(ctx context.Context, cfg config.Config) (storage.Bucket, error) {
	if cfg.StorageDriver == "drive" {
		log.Printf("Storing images in Google Drive folder %s", cfg.DriveFolderID)
		return storage.NewDriveBucket(ctx, cfg.DriveCredentials, cfg.DriveFolderID)
	}

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		baseURL = "http://localhost:" + cfg.Port
	}
	return storage.NewLocalBucket(cfg.StorageDir, cfg.StorageBucket, baseURL)
}
