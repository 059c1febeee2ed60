package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/jsekonopo/agriassist-sub001/internal/ai"
	"github.com/jsekonopo/agriassist-sub001/internal/api/handlers"
	"github.com/jsekonopo/agriassist-sub001/internal/api/middleware"
	"github.com/jsekonopo/agriassist-sub001/internal/config"
	"github.com/jsekonopo/agriassist-sub001/internal/cron"
	"github.com/jsekonopo/agriassist-sub001/internal/db"
	"github.com/jsekonopo/agriassist-sub001/internal/email"
	"github.com/jsekonopo/agriassist-sub001/internal/notification"
	"github.com/jsekonopo/agriassist-sub001/internal/repository"
	"github.com/jsekonopo/agriassist-sub001/internal/seed"
	"github.com/jsekonopo/agriassist-sub001/internal/service"
	"github.com/jsekonopo/agriassist-sub001/internal/socket"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// ============================================
	// Database
	// ============================================
	log.Println("Running database migrations...")
	if err := db.RunMigrations(cfg.DatabaseURL, "./internal/db/migrations"); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Database migrations completed")

	pg, err := db.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer pg.Close()
	log.Println("Connected to PostgreSQL")

	repos := repository.NewRepositories(pg.Pool)

	// ============================================
	// Redis (optional)
	// ============================================
	var redisDB *db.RedisDB
	if cfg.RedisURL != "" {
		redisDB, err = db.NewRedisDB(cfg.RedisURL)
		if err != nil {
			log.Printf("Failed to connect to Redis: %v (continuing without cache)", err)
			redisDB = nil
		} else {
			defer redisDB.Close()
			log.Println("Redis cache enabled")
		}
	}

	// ============================================
	// Email (optional)
	// ============================================
	var emailSvc *email.Service
	if cfg.SMTPHost != "" {
		emailSvc = email.NewService(&email.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
			UseTLS:   cfg.SMTPUseTLS,
			BaseURL:  cfg.FrontendURL,
		})
		emailSvc.StartQueue(2)
		defer emailSvc.StopQueue()
		log.Println("Email service initialized")
	} else {
		log.Println("Email not configured (SMTP_HOST not set)")
	}

	// ============================================
	// WebSocket hub
	// ============================================
	hub := socket.NewHub()
	go hub.Run()
	broadcaster := socket.NewBroadcaster(hub)
	wsHandler := socket.NewHandler(hub, cfg.JWTSecret)
	log.Println("WebSocket hub initialized")

	// ============================================
	// Gemini model client (optional)
	// ============================================
	var model ai.ModelClient
	gemini, err := ai.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Printf("Failed to create Gemini client: %v (advisor disabled)", err)
	} else if gemini != nil {
		model = gemini
		log.Println("Gemini advisor enabled")
	} else {
		log.Println("Advisor not configured (GEMINI_API_KEY not set)")
	}

	// ============================================
	// Services
	// ============================================
	notificationSvc := notification.NewService(repos.NotificationRepo, repos.UserRepo)
	notificationSvc.SetBroadcaster(broadcaster)
	if emailSvc != nil {
		notificationSvc.SetEmailService(emailSvc)
	}

	services := service.NewServices(&service.ServiceDeps{
		Config:      cfg,
		Repos:       repos,
		NotifSvc:    notificationSvc,
		EmailSvc:    emailSvc,
		Broadcaster: broadcaster,
		Redis:       redisDB,
		Model:       model,
	})
	log.Println("All services initialized")

	if cfg.Environment != "production" {
		log.Println("Seeding development data...")
		seed.SeedData(repos)
	}

	h := handlers.NewHandlers(services, notificationSvc)

	// ============================================
	// Cron scheduler
	// ============================================
	cronScheduler := cron.NewScheduler(
		services,
		notificationSvc,
		emailSvc,
		repos.TaskRepo,
		repos.UserRepo,
		repos.NotificationRepo,
	)
	cronScheduler.Start()
	defer cronScheduler.Stop()

	// ============================================
	// Router
	// ============================================
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL, "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"timestamp":  time.Now(),
			"database":   "connected",
			"cache":      cacheStatus(redisDB),
			"ws_clients": hub.GetConnectedClientsCount(),
			"email":      emailStatus(emailSvc),
		})
	})

	api := r.Group("/api")
	{
		// Public routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/logout", h.Auth.Logout)
		}

		// WebSocket route (token in query param)
		api.GET("/ws", wsHandler.HandleWebSocket)

		// Notification creation accepts service-to-service calls without a
		// bearer token.
		api.POST("/notifications/create", middleware.OptionalAuthMiddleware(services.Auth), h.Notification.Create)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(services.Auth))
		{
			users := protected.Group("/users")
			{
				users.GET("/me", h.User.Me)
				users.PUT("/me", h.User.UpdateProfile)
				users.PUT("/me/preferences", h.User.UpdatePreferences)
			}

			farm := protected.Group("/farm")
			{
				farm.GET("", h.Farm.Get)
				farm.PUT("", h.Farm.Update)
				farm.GET("/staff", h.Farm.ListStaff)
				farm.POST("/update-staff-role", h.Farm.UpdateStaffRole)
				farm.POST("/remove-staff", h.Farm.RemoveStaff)

				invitations := farm.Group("/invitations")
				{
					invitations.POST("", h.Invitation.Create)
					invitations.GET("", h.Invitation.ListByFarm)
					invitations.GET("/pending", h.Invitation.ListPending)
					invitations.POST("/process-token", h.Invitation.ProcessToken)
					invitations.POST("/accept", h.Invitation.Accept)
					invitations.POST("/decline", h.Invitation.Decline)
					invitations.DELETE("/:id", h.Invitation.Revoke)
				}
			}

			notifications := protected.Group("/notifications")
			{
				notifications.GET("", h.Notification.List)
				notifications.GET("/count", h.Notification.Count)
				notifications.PATCH("/:id/read", h.Notification.MarkRead)
				notifications.PATCH("/read-all", h.Notification.MarkAllRead)
				notifications.DELETE("/:id", h.Notification.Delete)
				notifications.DELETE("", h.Notification.DeleteAll)
			}

			fields := protected.Group("/fields")
			{
				fields.POST("", h.Field.Create)
				fields.GET("", h.Field.List)
				fields.GET("/:id", h.Field.Get)
				fields.PUT("/:id", h.Field.Update)
				fields.DELETE("/:id", h.Field.Delete)
				fields.POST("/:id/soil-tests", h.Field.AddSoilTest)
				fields.GET("/:id/soil-tests", h.Field.ListSoilTests)
				fields.GET("/:id/soil-tests/latest", h.Field.LatestSoilTest)
				fields.DELETE("/:id/soil-tests/:soilTestId", h.Field.DeleteSoilTest)
			}

			plantings := protected.Group("/plantings")
			{
				plantings.POST("", h.Planting.Create)
				plantings.GET("", h.Planting.List)
				plantings.GET("/:id", h.Planting.Get)
				plantings.PUT("/:id", h.Planting.Update)
				plantings.DELETE("/:id", h.Planting.Delete)
			}

			harvests := protected.Group("/harvests")
			{
				harvests.POST("", h.Planting.AddHarvest)
				harvests.GET("", h.Planting.ListHarvests)
				harvests.DELETE("/:id", h.Planting.DeleteHarvest)
			}

			animals := protected.Group("/animals")
			{
				animals.POST("", h.Livestock.Create)
				animals.GET("", h.Livestock.List)
				animals.GET("/:id", h.Livestock.Get)
				animals.PUT("/:id", h.Livestock.Update)
				animals.DELETE("/:id", h.Livestock.Delete)
				animals.POST("/:id/health-logs", h.Livestock.AddHealthLog)
				animals.GET("/:id/health-logs", h.Livestock.ListHealthLogs)
				animals.DELETE("/:id/health-logs/:logId", h.Livestock.DeleteHealthLog)
			}

			finances := protected.Group("/finances")
			{
				finances.POST("", h.Finance.Create)
				finances.GET("", h.Finance.List)
				finances.DELETE("/:id", h.Finance.Delete)
				finances.GET("/summary", h.Finance.Summary)
			}

			tasks := protected.Group("/tasks")
			{
				tasks.POST("", h.Task.Create)
				tasks.GET("", h.Task.List)
				tasks.GET("/:id", h.Task.Get)
				tasks.PUT("/:id", h.Task.Update)
				tasks.POST("/:id/complete", h.Task.Complete)
				tasks.DELETE("/:id", h.Task.Delete)
			}

			protected.GET("/dashboard/summary", h.Dashboard.Summary)

			advisor := protected.Group("/advisor")
			{
				advisor.POST("/diagnose-plant", h.Advisor.DiagnosePlant)
				advisor.POST("/treatment-plan", h.Advisor.TreatmentPlan)
				advisor.POST("/interpret-soil", h.Advisor.InterpretSoil)
				advisor.POST("/optimize", h.Advisor.Optimize)
			}
		}
	}

	// ============================================
	// Server with graceful shutdown
	// ============================================
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func cacheStatus(r *db.RedisDB) string {
	if r == nil {
		return "disabled"
	}
	return "enabled"
}

func emailStatus(e *email.Service) string {
	if e == nil {
		return "disabled"
	}
	return "enabled"
}
