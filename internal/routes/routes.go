package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jdholguin19/tareas/internal/handlers"
	"github.com/Jdholguin19/tareas/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	jwtKey []byte,
	authHandler *handlers.AuthHandler,
	taskHandler *handlers.TaskHandler,
	projectHandler *handlers.ProjectHandler,
	fileHandler *handlers.FileHandler,
	transcribeHandler *handlers.TranscribeHandler, // may be nil when not configured
	exportHandler *handlers.ExportHandler,
	notificationHandler *handlers.NotificationHandler,
) *gin.Engine {

	// ---- public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/login", authHandler.Login)
	r.POST("/register", authHandler.Register)
	r.POST("/refresh", authHandler.RefreshToken)
	r.GET("/auth/check", authHandler.Check)

	// ---- protected
	r.Use(middleware.AuthMiddleware(jwtKey))

	// TASKS
	tasks := r.Group("/tasks")
	{
		tasks.GET("/", taskHandler.GetAll)
		tasks.GET("/buckets", taskHandler.Buckets)
		tasks.POST("/quick", taskHandler.CreateQuick)
		tasks.GET("/:id", taskHandler.GetByID)
		tasks.POST("/:id/subtasks", taskHandler.CreateSubtask)
		tasks.PUT("/:id", taskHandler.Update)
		tasks.DELETE("/:id", taskHandler.Delete)
	}

	// PROJECTS
	r.GET("/projects", projectHandler.GetAll)

	// FILES
	r.POST("/files/upload", fileHandler.Upload)

	// VOICE CAPTURE
	if transcribeHandler != nil {
		r.POST("/transcribe", transcribeHandler.Transcribe)
	}

	// EXPORTS
	export := r.Group("/export")
	{
		export.GET("/csv", exportHandler.CSV)
		export.GET("/report", exportHandler.Report)
	}

	// NOTIFICATIONS
	notif := r.Group("/notifications")
	{
		notif.GET("/overdue", notificationHandler.Overdue)
		notif.POST("/digest", notificationHandler.SendDigest)
	}

	return r
}
