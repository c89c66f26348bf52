package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Jdholguin19/tareas/internal/services"
)

// 25 MB, the transcription API's own limit
const maxAudioBytes = 25 << 20

type TranscribeHandler struct {
	transcriber *services.TranscribeService
}

func NewTranscribeHandler(transcriber *services.TranscribeService) *TranscribeHandler {
	return &TranscribeHandler{transcriber: transcriber}
}

// POST /transcribe (multipart, field "audio")
func (h *TranscribeHandler) Transcribe(c *gin.Context) {
	userID := getUserID(c)

	if h.transcriber == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "transcription is not configured"})
		return
	}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "audio file is required"})
		return
	}
	if fileHeader.Size > maxAudioBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "audio file too large"})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		log.Printf("[transcribe][err] open userID=%d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read audio"})
		return
	}
	defer src.Close()

	text, err := h.transcriber.Transcribe(c.Request.Context(), fileHeader.Filename, src)
	if err != nil {
		log.Printf("[transcribe][err] userID=%d name=%q: %v", userID, fileHeader.Filename, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "transcription failed"})
		return
	}

	log.Printf("[transcribe][ok] userID=%d chars=%d", userID, len(text))
	c.JSON(http.StatusOK, gin.H{"text": text})
}
