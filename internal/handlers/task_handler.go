package handlers

import (
	"errors"
	"html"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Jdholguin19/tareas/internal/models"
	"github.com/Jdholguin19/tareas/internal/repositories"
	"github.com/Jdholguin19/tareas/internal/services"
	"github.com/Jdholguin19/tareas/internal/tasktree"
)

type TaskHandler struct {
	service services.TaskService

	// telegram notifications, optional
	tg    *services.TelegramService
	users repositories.UserRepository
}

func NewTaskHandler(service services.TaskService, tg *services.TelegramService, users repositories.UserRepository) *TaskHandler {
	return &TaskHandler{service: service, tg: tg, users: users}
}

// due dates come in as plain dates from the client, RFC3339 is
// accepted too for API callers
func parseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GET /tasks
func (h *TaskHandler) GetAll(c *gin.Context) {
	userID := getUserID(c)
	log.Printf("[task][list] call by userID=%d q=%v", userID, c.Request.URL.RawQuery)

	filter := models.TaskFilter{OwnerID: &userID}
	if v, ok := c.GetQuery("project_id"); ok {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.ProjectID = &id
		} else {
			log.Printf("[task][list][warn] bad project_id=%q: %v", v, err)
		}
	}
	if v, ok := c.GetQuery("parent_id"); ok {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.ParentID = &id
		} else {
			log.Printf("[task][list][warn] bad parent_id=%q: %v", v, err)
		}
	}
	if v, ok := c.GetQuery("state"); ok {
		st := models.TaskState(v)
		filter.State = &st
	}

	tasks, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		log.Printf("[task][list][err] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve tasks"})
		return
	}
	log.Printf("[task][list][ok] count=%d", len(tasks))
	c.JSON(http.StatusOK, tasks)
}

// GET /tasks/buckets
func (h *TaskHandler) Buckets(c *gin.Context) {
	userID := getUserID(c)
	log.Printf("[task][buckets] call by userID=%d", userID)

	buckets, err := h.service.Buckets(c.Request.Context(), userID, time.Now())
	if err != nil {
		log.Printf("[task][buckets][err] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build task views"})
		return
	}
	c.JSON(http.StatusOK, buckets)
}

// GET /tasks/:id
func (h *TaskHandler) GetByID(c *gin.Context) {
	userID := getUserID(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	task, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		log.Printf("[task][getByID][err] id=%d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get task"})
		return
	}
	if task == nil || task.OwnerID != userID {
		log.Printf("[task][getByID][404] id=%d userID=%d", id, userID)
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	c.JSON(http.StatusOK, task)
}

// POST /tasks/quick { "title": "...", "attachments": [...] }
func (h *TaskHandler) CreateQuick(c *gin.Context) {
	userID := getUserID(c)
	log.Printf("[task][quick] call by userID=%d", userID)

	var req struct {
		Title       string   `json:"title" binding:"required"`
		Attachments []string `json:"attachments"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[task][quick][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	task, err := h.service.CreateQuick(c.Request.Context(), userID, title, req.Attachments)
	if err != nil {
		log.Printf("[task][quick][err] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create task"})
		return
	}
	log.Printf("[task][quick][ok] id=%d title=%q", task.ID, task.Title)
	c.JSON(http.StatusCreated, task)
}

// POST /tasks/:id/subtasks { "title": "..." }
func (h *TaskHandler) CreateSubtask(c *gin.Context) {
	userID := getUserID(c)

	parentID, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req struct {
		Title string `json:"title" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[task][subtask][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.service.CreateSubtask(c.Request.Context(), userID, parentID, strings.TrimSpace(req.Title))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrParentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "parent task not found"})
		case errors.Is(err, services.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		default:
			log.Printf("[task][subtask][err] parent=%d: %v", parentID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create subtask"})
		}
		return
	}
	log.Printf("[task][subtask][ok] id=%d parent=%d", task.ID, parentID)
	c.JSON(http.StatusCreated, task)

	h.notifyAssignee(c, task, "📌 New subtask")
}

// PUT /tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	userID := getUserID(c)
	log.Printf("[task][update] call by userID=%d id_param=%s", userID, c.Param("id"))

	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	current, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		log.Printf("[task][update][err] get current id=%d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get task"})
		return
	}
	if current == nil || current.OwnerID != userID {
		log.Printf("[task][update][404] id=%d userID=%d", id, userID)
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	var req struct {
		Title       *string     `json:"title"`
		Description *string     `json:"description"`
		Progress    interface{} `json:"progress"` // number or string, both accepted
		DueDate     *string     `json:"due_date"` // YYYY-MM-DD, empty clears
		AssigneeID  *int64      `json:"assignee_id"`
		ProjectID   *int64      `json:"project_id"`
		Attachments *[]string   `json:"attachments"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[task][update][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := *current

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title cannot be empty"})
			return
		}
		update.Title = title
	}
	if req.Description != nil {
		update.Description = *req.Description
	}
	if req.Progress != nil {
		update.Progress = tasktree.ParseProgress(req.Progress)
	}
	if req.DueDate != nil {
		due, err := parseDueDate(*req.DueDate)
		if err != nil {
			log.Printf("[task][update][err] invalid due_date=%q: %v", *req.DueDate, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due_date (YYYY-MM-DD)"})
			return
		}
		update.DueDate = due
	}
	if req.AssigneeID != nil {
		update.AssigneeID = req.AssigneeID
	}
	if req.ProjectID != nil {
		update.ProjectID = req.ProjectID
	}
	if req.Attachments != nil {
		update.Attachments = *req.Attachments
	}

	updatedTask, err := h.service.Update(c.Request.Context(), &update)
	if err != nil {
		log.Printf("[task][update][err] save id=%d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update task"})
		return
	}
	log.Printf("[task][update][ok] id=%d progress=%d state=%s", id, updatedTask.Progress, updatedTask.State)
	c.JSON(http.StatusOK, updatedTask)

	if req.AssigneeID != nil {
		h.notifyAssignee(c, updatedTask, "👤 Task assigned to you")
	}
}

// DELETE /tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	userID := getUserID(c)
	log.Printf("[task][delete] call by userID=%d id_param=%s", userID, c.Param("id"))

	id, ok := parseIDParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, id); err != nil {
		switch {
		case errors.Is(err, services.ErrTaskNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		case errors.Is(err, services.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		default:
			log.Printf("[task][delete][err] id=%d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete task"})
		}
		return
	}

	log.Printf("[task][delete][ok] id=%d", id)
	c.Status(http.StatusNoContent)
}

// === TG helper ===
func (h *TaskHandler) notifyAssignee(c *gin.Context, t *models.Task, prefix string) {
	if h.tg == nil || h.users == nil || t == nil || t.AssigneeID == nil {
		return
	}
	chatID, allow, err := h.users.GetTelegramSettings(c.Request.Context(), *t.AssigneeID)
	if err != nil {
		log.Printf("[task][notify] get telegram settings failed: assignee=%d err=%v", *t.AssigneeID, err)
		return
	}
	if !allow || chatID == 0 {
		return
	}
	_ = h.tg.SendMessage(chatID, h.formatTask(prefix, t))
}

func (h *TaskHandler) formatTask(prefix string, t *models.Task) string {
	due := "—"
	if t.DueDate != nil {
		due = t.DueDate.Format("2006-01-02")
	}
	title := html.EscapeString(t.Title) // parse_mode=HTML
	return prefix + "\n" +
		"• <b>" + title + "</b>\n" +
		"• Progress: <code>" + strconv.Itoa(t.Progress) + "%</code>\n" +
		"• Due: <code>" + due + "</code>"
}
