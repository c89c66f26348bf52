package handlers

import (
	"bytes"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Jdholguin19/tareas/internal/models"
	"github.com/Jdholguin19/tareas/internal/pdf"
	"github.com/Jdholguin19/tareas/internal/repositories"
	"github.com/Jdholguin19/tareas/internal/services"
	"github.com/Jdholguin19/tareas/internal/tasktree"
)

type ExportHandler struct {
	tasks    services.TaskService
	users    services.UserService
	projects repositories.ProjectRepository
	export   *services.ExportService
	report   pdf.Generator
}

func NewExportHandler(tasks services.TaskService, users services.UserService, projects repositories.ProjectRepository, export *services.ExportService, report pdf.Generator) *ExportHandler {
	return &ExportHandler{tasks: tasks, users: users, projects: projects, export: export, report: report}
}

// effective replaces each stored progress with the aggregated value,
// so the export matches what the views show
func effectiveSnapshot(all []models.Task) []models.Task {
	out := make([]models.Task, len(all))
	for i, t := range all {
		t.Progress = tasktree.ComputeProgress(t, all)
		t.State = models.StateForProgress(t.Progress)
		out[i] = t
	}
	return out
}

// GET /export/csv
func (h *ExportHandler) CSV(c *gin.Context) {
	userID := getUserID(c)
	log.Printf("[export][csv] call by userID=%d", userID)

	all, err := h.tasks.GetAll(c.Request.Context(), userID)
	if err != nil {
		log.Printf("[export][csv][err] load tasks: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load tasks"})
		return
	}
	projects, err := h.projects.FindAll(c.Request.Context())
	if err != nil {
		log.Printf("[export][csv][err] load projects: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load projects"})
		return
	}

	var buf bytes.Buffer
	if err := h.export.WriteCSV(&buf, effectiveSnapshot(all), projects); err != nil {
		log.Printf("[export][csv][err] write: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build export"})
		return
	}

	log.Printf("[export][csv][ok] userID=%d tasks=%d bytes=%d", userID, len(all), buf.Len())
	c.Header("Content-Disposition", `attachment; filename="tareas.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// GET /export/report
func (h *ExportHandler) Report(c *gin.Context) {
	userID := getUserID(c)
	log.Printf("[export][report] call by userID=%d", userID)

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil || user == nil {
		log.Printf("[export][report][err] load user=%d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}

	buckets, err := h.tasks.Buckets(c.Request.Context(), userID, time.Now())
	if err != nil {
		log.Printf("[export][report][err] build views: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build report"})
		return
	}

	var buf bytes.Buffer
	err = h.report.GenerateReport(&buf, pdf.ReportData{
		Username:    user.Username,
		GeneratedAt: time.Now(),
		Counts:      buckets.Counts,
		Overdue:     buckets.Notifications,
	})
	if err != nil {
		log.Printf("[export][report][err] render: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render report"})
		return
	}

	log.Printf("[export][report][ok] userID=%d bytes=%d", userID, buf.Len())
	c.Header("Content-Disposition", `attachment; filename="reporte_tareas.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
