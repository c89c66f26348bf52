// internal/services/task_service.go
package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Jdholguin19/tareas/internal/models"
	"github.com/Jdholguin19/tareas/internal/repositories"
	"github.com/Jdholguin19/tareas/internal/tasktree"
)

var (
	ErrTaskNotFound   = errors.New("task not found")
	ErrParentNotFound = errors.New("parent task not found")
	ErrForbidden      = errors.New("forbidden")
)

// TaskService defines the interface for task-related business logic.
type TaskService interface {
	GetAll(ctx context.Context, ownerID int64) ([]models.Task, error)
	List(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	GetByID(ctx context.Context, id int64) (*models.Task, error)
	CreateQuick(ctx context.Context, ownerID int64, title string, attachments []string) (*models.Task, error)
	CreateSubtask(ctx context.Context, ownerID, parentID int64, title string) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) (*models.Task, error)
	Delete(ctx context.Context, ownerID, id int64) error
	Buckets(ctx context.Context, ownerID int64, now time.Time) (*models.TaskBuckets, error)
}

type taskService struct {
	repo repositories.TaskRepository
}

// NewTaskService creates a new instance of TaskService.
func NewTaskService(repo repositories.TaskRepository) TaskService {
	return &taskService{repo: repo}
}

func (s *taskService) GetAll(ctx context.Context, ownerID int64) ([]models.Task, error) {
	return s.repo.FindAllByOwner(ctx, ownerID)
}

func (s *taskService) List(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	return s.repo.FindAll(ctx, filter)
}

func (s *taskService) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	return s.repo.FindByID(ctx, id)
}

// CreateQuick captures a root task with just a title and optional
// attachment URLs: no description, no due date, General project, 0%.
func (s *taskService) CreateQuick(ctx context.Context, ownerID int64, title string, attachments []string) (*models.Task, error) {
	if attachments == nil {
		attachments = []string{}
	}
	task := &models.Task{
		Title:       title,
		State:       models.StatePending,
		Progress:    0,
		CreatedAt:   time.Now(),
		OwnerID:     ownerID,
		ParentID:    models.RootParentID,
		Attachments: attachments,
	}
	if err := s.repo.Store(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// CreateSubtask creates a child under parentID, inheriting the parent's
// due date, assignee and project at creation time. It starts at 0%.
func (s *taskService) CreateSubtask(ctx context.Context, ownerID, parentID int64, title string) (*models.Task, error) {
	parent, err := s.repo.FindByID(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, ErrParentNotFound
	}
	if parent.OwnerID != ownerID {
		return nil, ErrForbidden
	}

	task := &models.Task{
		Title:       title,
		State:       models.StatePending,
		Progress:    0,
		CreatedAt:   time.Now(),
		DueDate:     parent.DueDate,
		OwnerID:     ownerID,
		AssigneeID:  parent.AssigneeID,
		ProjectID:   parent.ProjectID,
		ParentID:    parentID,
		Attachments: []string{},
	}
	if err := s.repo.Store(ctx, task); err != nil {
		return nil, err
	}

	// a new 0% child drags the parent's aggregate down
	s.propagate(ctx, ownerID, parentID)
	return task, nil
}

// Update persists the task and propagates the change one level up: the
// direct parent's aggregate is recomputed, grandparents are not. That
// single-level scope is deliberate; stale grandparents correct on the
// next recompute pass.
func (s *taskService) Update(ctx context.Context, task *models.Task) (*models.Task, error) {
	task.State = models.StateForProgress(task.Progress)
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	s.propagate(ctx, task.OwnerID, task.ParentID)
	return task, nil
}

// Delete removes the task and recomputes its former parent over the
// post-deletion child set.
func (s *taskService) Delete(ctx context.Context, ownerID, id int64) error {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if task == nil {
		return ErrTaskNotFound
	}
	if task.OwnerID != ownerID {
		return ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.propagate(ctx, ownerID, task.ParentID)
	return nil
}

// Buckets partitions the owner's effective snapshot into the display
// views. "Effective" means every task carries its aggregated progress,
// the same number the aggregator would report, so bucket membership
// never lags behind subtask changes.
func (s *taskService) Buckets(ctx context.Context, ownerID int64, now time.Time) (*models.TaskBuckets, error) {
	all, err := s.repo.FindAllByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	effective := make([]models.Task, len(all))
	for i, t := range all {
		t.Progress = tasktree.ComputeProgress(t, all)
		t.State = models.StateForProgress(t.Progress)
		effective[i] = t
	}

	today := tasktree.StartOfDay(now)
	notifications := tasktree.OverdueNotifications(effective, today)
	return &models.TaskBuckets{
		Today:         tasktree.TodayOrUndated(effective, today),
		Overdue:       tasktree.OverdueView(effective, today),
		Pending:       tasktree.PendingFuture(effective, today),
		Completed:     tasktree.CompletedTasks(effective),
		Notifications: notifications,
		Counts: models.BucketCounts{
			DueToday:  tasktree.CountDueToday(effective, today),
			NoDueDate: tasktree.CountNoDueDate(effective),
			Overdue:   len(notifications),
			Completed: len(tasktree.CompletedTasks(effective)),
		},
	}, nil
}

// propagate recomputes the direct parent of a changed or deleted task
// and persists the new aggregate fire-and-forget: the write failure is
// logged and never retried, the computed value is already what callers
// see. A missing parent is not an error, just nothing to do.
func (s *taskService) propagate(ctx context.Context, ownerID, parentID int64) {
	if parentID == models.RootParentID {
		return
	}
	all, err := s.repo.FindAllByOwner(ctx, ownerID)
	if err != nil {
		log.Printf("[task][propagate][err] load snapshot owner=%d: %v", ownerID, err)
		return
	}

	var parent *models.Task
	for i := range all {
		if all[i].ID == parentID {
			parent = &all[i]
			break
		}
	}
	if parent == nil {
		// parent already gone, skip silently
		return
	}
	if !tasktree.HasChildren(*parent, all) {
		return
	}

	recomputed := tasktree.ComputeProgress(*parent, all)
	if recomputed == parent.Progress {
		return
	}

	go func(id int64, progress int) {
		writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.repo.UpdateProgress(writeCtx, id, progress, models.StateForProgress(progress)); err != nil {
			log.Printf("[task][propagate][err] persist parent id=%d progress=%d: %v", id, progress, err)
		}
	}(parent.ID, recomputed)
}
