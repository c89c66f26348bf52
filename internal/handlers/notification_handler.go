package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Jdholguin19/tareas/internal/services"
)

type NotificationHandler struct {
	tasks services.TaskService
	users services.UserService
	email services.EmailService
	tg    *services.TelegramService
}

func NewNotificationHandler(tasks services.TaskService, users services.UserService, email services.EmailService, tg *services.TelegramService) *NotificationHandler {
	return &NotificationHandler{tasks: tasks, users: users, email: email, tg: tg}
}

// GET /notifications/overdue
// Badge feed: raw overdue tasks without the parent context rows that
// the overdue view adds.
func (h *NotificationHandler) Overdue(c *gin.Context) {
	userID := getUserID(c)

	buckets, err := h.tasks.Buckets(c.Request.Context(), userID, time.Now())
	if err != nil {
		log.Printf("[notify][overdue][err] userID=%d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(buckets.Notifications),
		"tasks": buckets.Notifications,
	})
}

// POST /notifications/digest
// Pushes the caller's overdue list through every channel they enabled.
func (h *NotificationHandler) SendDigest(c *gin.Context) {
	userID := getUserID(c)
	log.Printf("[notify][digest] call by userID=%d", userID)

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil || user == nil {
		log.Printf("[notify][digest][err] load user=%d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}

	buckets, err := h.tasks.Buckets(c.Request.Context(), userID, time.Now())
	if err != nil {
		log.Printf("[notify][digest][err] build views userID=%d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load tasks"})
		return
	}
	overdue := buckets.Notifications
	if len(overdue) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "nothing overdue", "sent": []string{}})
		return
	}

	var sent []string
	if h.email != nil && user.Email != "" {
		if err := h.email.SendOverdueDigest(user.Email, user.Username, overdue); err != nil {
			log.Printf("[notify][digest][err] email userID=%d: %v", userID, err)
		} else {
			sent = append(sent, "email")
		}
	}
	if h.tg != nil && user.NotifyTelegram && user.TelegramChatID != 0 {
		if err := h.tg.NotifyOverdue(user.TelegramChatID, overdue); err != nil {
			log.Printf("[notify][digest][err] telegram userID=%d: %v", userID, err)
		} else {
			sent = append(sent, "telegram")
		}
	}
	if sent == nil {
		sent = []string{}
	}

	log.Printf("[notify][digest][ok] userID=%d overdue=%d channels=%v", userID, len(overdue), sent)
	c.JSON(http.StatusOK, gin.H{"overdue": len(overdue), "sent": sent})
}
