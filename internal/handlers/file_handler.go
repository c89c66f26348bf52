package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jdholguin19/tareas/internal/services"
)

// 10 MB per attachment
const maxUploadBytes = 10 << 20

type FileHandler struct {
	files *services.FileService
}

func NewFileHandler(files *services.FileService) *FileHandler {
	return &FileHandler{files: files}
}

// POST /files/upload (multipart, field "file")
func (h *FileHandler) Upload(c *gin.Context) {
	userID := getUserID(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		log.Printf("[file][upload][err] open userID=%d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file"})
		return
	}
	defer src.Close()

	url, err := h.files.Save(fileHeader.Filename, src)
	if err != nil {
		log.Printf("[file][upload][err] save userID=%d name=%q: %v", userID, fileHeader.Filename, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store file"})
		return
	}

	log.Printf("[file][upload][ok] userID=%d url=%s", userID, url)
	c.JSON(http.StatusCreated, gin.H{"url": url})
}
