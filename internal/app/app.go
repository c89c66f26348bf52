package app

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/Jdholguin19/tareas/internal/config"
	"github.com/Jdholguin19/tareas/internal/handlers"
	"github.com/Jdholguin19/tareas/internal/pdf"
	"github.com/Jdholguin19/tareas/internal/repositories"
	"github.com/Jdholguin19/tareas/internal/routes"
	"github.com/Jdholguin19/tareas/internal/services"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/Jdholguin19/tareas/docs"
)

func Run() {
	cfg := config.LoadConfig()

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	taskRepo := repositories.NewTaskRepository(db)
	projectRepo := repositories.NewProjectRepository(db)

	// === Services ===
	authService := services.NewAuthService()
	userService := services.NewUserService(userRepo, authService)
	taskService := services.NewTaskService(taskRepo)
	fileService := services.NewFileService(cfg.Files.RootDir)
	exportService := services.NewExportService()
	reportGen := pdf.NewReportGenerator()

	var emailService services.EmailService
	if cfg.Email.Enabled {
		emailService = services.NewEmailService(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.FromEmail,
		)
	}

	var tgService *services.TelegramService
	if cfg.Telegram.Enabled && cfg.Telegram.BotToken != "" {
		tgService, err = services.NewTelegramService(cfg.Telegram.BotToken)
		if err != nil {
			log.Printf("[app] telegram disabled: %v", err)
			tgService = nil
		}
	}

	var transcribeService *services.TranscribeService
	if cfg.OpenAI.APIKey != "" || cfg.OpenAI.DryRun {
		transcribeService = services.NewTranscribeService(cfg.OpenAI.APIKey, cfg.OpenAI.DryRun)
	}

	// === Handlers ===
	jwtKey := []byte(cfg.Auth.JWTSecret)
	authHandler := handlers.NewAuthHandler(userService, jwtKey)
	taskHandler := handlers.NewTaskHandler(taskService, tgService, userRepo)
	projectHandler := handlers.NewProjectHandler(projectRepo)
	fileHandler := handlers.NewFileHandler(fileService)
	exportHandler := handlers.NewExportHandler(taskService, userService, projectRepo, exportService, reportGen)
	notificationHandler := handlers.NewNotificationHandler(taskService, userService, emailService, tgService)

	var transcribeHandler *handlers.TranscribeHandler
	if transcribeService != nil {
		transcribeHandler = handlers.NewTranscribeHandler(transcribeService)
	}

	// === Gin ===
	router := gin.Default()
	router.Use(corsMiddleware())

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Uploaded attachments
	router.Static("/storage", cfg.Files.RootDir)

	// Routes (JWT guard lives inside SetupRoutes)
	routes.SetupRoutes(
		router,
		jwtKey,
		authHandler,
		taskHandler,
		projectHandler,
		fileHandler,
		transcribeHandler,
		exportHandler,
		notificationHandler,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
