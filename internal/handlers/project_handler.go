package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jdholguin19/tareas/internal/repositories"
)

type ProjectHandler struct {
	projects repositories.ProjectRepository
}

func NewProjectHandler(projects repositories.ProjectRepository) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// GET /projects
func (h *ProjectHandler) GetAll(c *gin.Context) {
	projects, err := h.projects.FindAll(c.Request.Context())
	if err != nil {
		log.Printf("[project][list][err] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve projects"})
		return
	}
	c.JSON(http.StatusOK, projects)
}
