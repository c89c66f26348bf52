package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jdholguin19/tareas/internal/models"
)

type progressWrite struct {
	ID       int64
	Progress int
	State    models.TaskState
}

// fakeTaskRepo is an in-memory TaskRepository. Progress writes are
// reported on a channel so tests can observe the fire-and-forget
// propagation without sleeping.
type fakeTaskRepo struct {
	mu           sync.Mutex
	tasks        map[int64]models.Task
	nextID       int64
	writes       chan progressWrite
	failProgress bool
}

func newFakeTaskRepo(seed ...models.Task) *fakeTaskRepo {
	r := &fakeTaskRepo{
		tasks:  make(map[int64]models.Task),
		nextID: 1,
		writes: make(chan progressWrite, 8),
	}
	for _, t := range seed {
		r.tasks[t.ID] = t
		if t.ID >= r.nextID {
			r.nextID = t.ID + 1
		}
	}
	return r
}

func (r *fakeTaskRepo) Store(_ context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task.ID = r.nextID
	r.nextID++
	r.tasks[task.ID] = *task
	return nil
}

func (r *fakeTaskRepo) FindByID(_ context.Context, id int64) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tasks[id]; ok {
		copied := t
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeTaskRepo) FindAllByOwner(_ context.Context, ownerID int64) ([]models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Task
	for _, t := range r.tasks {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTaskRepo) FindAll(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	if filter.OwnerID != nil {
		return r.FindAllByOwner(ctx, *filter.OwnerID)
	}
	return nil, nil
}

func (r *fakeTaskRepo) Update(_ context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[task.ID] = *task
	return nil
}

func (r *fakeTaskRepo) UpdateProgress(_ context.Context, id int64, progress int, state models.TaskState) error {
	r.mu.Lock()
	fail := r.failProgress
	if !fail {
		if t, ok := r.tasks[id]; ok {
			t.Progress = progress
			t.State = state
			r.tasks[id] = t
		}
	}
	r.mu.Unlock()
	r.writes <- progressWrite{ID: id, Progress: progress, State: state}
	if fail {
		return errors.New("write refused")
	}
	return nil
}

func (r *fakeTaskRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tasks, id)
	return nil
}

func waitWrite(t *testing.T, r *fakeTaskRepo) progressWrite {
	t.Helper()
	select {
	case w := <-r.writes:
		return w
	case <-time.After(2 * time.Second):
		t.Fatal("expected a propagated progress write")
		return progressWrite{}
	}
}

func assertNoWrite(t *testing.T, r *fakeTaskRepo) {
	t.Helper()
	select {
	case w := <-r.writes:
		t.Fatalf("unexpected progress write: %+v", w)
	case <-time.After(100 * time.Millisecond):
	}
}

func seedTask(id, parentID int64, progress int, createdOffset time.Duration) models.Task {
	return models.Task{
		ID:          id,
		Title:       "task",
		State:       models.StateForProgress(progress),
		Progress:    progress,
		CreatedAt:   time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC).Add(createdOffset),
		OwnerID:     1,
		ParentID:    parentID,
		Attachments: []string{},
	}
}

func TestTaskServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("Should create a quick task as a pending root", func(t *testing.T) {
		repo := newFakeTaskRepo()
		svc := NewTaskService(repo)

		task, err := svc.CreateQuick(ctx, 1, "buy milk", []string{"/storage/archivos/a.png"})
		require.NoError(t, err)
		assert.Equal(t, models.StatePending, task.State)
		assert.Equal(t, 0, task.Progress)
		assert.True(t, task.IsRoot())
		assert.Equal(t, []string{"/storage/archivos/a.png"}, task.Attachments)
	})

	t.Run("Should inherit due date, assignee and project on subtask creation", func(t *testing.T) {
		due := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
		assignee := int64(9)
		project := int64(3)
		parent := seedTask(1, 0, 40, 0)
		parent.DueDate = &due
		parent.AssigneeID = &assignee
		parent.ProjectID = &project

		repo := newFakeTaskRepo(parent)
		svc := NewTaskService(repo)

		sub, err := svc.CreateSubtask(ctx, 1, 1, "first step")
		require.NoError(t, err)
		assert.Equal(t, int64(1), sub.ParentID)
		assert.Equal(t, 0, sub.Progress)
		require.NotNil(t, sub.DueDate)
		assert.True(t, sub.DueDate.Equal(due))
		require.NotNil(t, sub.AssigneeID)
		assert.Equal(t, assignee, *sub.AssigneeID)
		require.NotNil(t, sub.ProjectID)
		assert.Equal(t, project, *sub.ProjectID)

		// the new 0% child pulls the parent's aggregate from 40 to 0
		w := waitWrite(t, repo)
		assert.Equal(t, int64(1), w.ID)
		assert.Equal(t, 0, w.Progress)
	})

	t.Run("Should reject a subtask under a missing parent", func(t *testing.T) {
		repo := newFakeTaskRepo()
		svc := NewTaskService(repo)
		_, err := svc.CreateSubtask(ctx, 1, 42, "orphan")
		assert.ErrorIs(t, err, ErrParentNotFound)
	})

	t.Run("Should reject a subtask under another user's task", func(t *testing.T) {
		parent := seedTask(1, 0, 0, 0)
		parent.OwnerID = 2
		repo := newFakeTaskRepo(parent)
		svc := NewTaskService(repo)
		_, err := svc.CreateSubtask(ctx, 1, 1, "not yours")
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestTaskServicePropagation(t *testing.T) {
	ctx := context.Background()

	t.Run("Should recompute the parent when a child's progress changes", func(t *testing.T) {
		repo := newFakeTaskRepo(
			seedTask(1, 0, 0, 0),
			seedTask(2, 1, 0, time.Hour),
			seedTask(3, 1, 0, 2*time.Hour),
		)
		svc := NewTaskService(repo)

		child, err := svc.GetByID(ctx, 2)
		require.NoError(t, err)
		child.Progress = 100
		_, err = svc.Update(ctx, child)
		require.NoError(t, err)

		w := waitWrite(t, repo)
		assert.Equal(t, int64(1), w.ID)
		assert.Equal(t, 50, w.Progress)
		assert.Equal(t, models.StateInProgress, w.State)
	})

	t.Run("Should derive state from progress on update", func(t *testing.T) {
		repo := newFakeTaskRepo(seedTask(1, 0, 0, 0))
		svc := NewTaskService(repo)

		task, err := svc.GetByID(ctx, 1)
		require.NoError(t, err)
		task.Progress = 100
		updated, err := svc.Update(ctx, task)
		require.NoError(t, err)
		assert.Equal(t, models.StateCompleted, updated.State)
	})

	t.Run("Should not persist the parent when the aggregate is unchanged", func(t *testing.T) {
		repo := newFakeTaskRepo(
			seedTask(1, 0, 50, 0),
			seedTask(2, 1, 100, time.Hour),
			seedTask(3, 1, 0, 2*time.Hour),
		)
		svc := NewTaskService(repo)

		child, err := svc.GetByID(ctx, 3)
		require.NoError(t, err)
		child.Title = "renamed"
		_, err = svc.Update(ctx, child)
		require.NoError(t, err)

		assertNoWrite(t, repo)
	})

	t.Run("Should recompute over the remaining children after a delete", func(t *testing.T) {
		repo := newFakeTaskRepo(
			seedTask(1, 0, 75, 0),
			seedTask(2, 1, 100, time.Hour),
			seedTask(3, 1, 50, 2*time.Hour),
		)
		svc := NewTaskService(repo)

		require.NoError(t, svc.Delete(ctx, 1, 3))

		w := waitWrite(t, repo)
		assert.Equal(t, int64(1), w.ID)
		assert.Equal(t, 100, w.Progress)
		assert.Equal(t, models.StateCompleted, w.State)
	})

	t.Run("Should skip propagation silently when the parent is gone", func(t *testing.T) {
		repo := newFakeTaskRepo(seedTask(2, 99, 30, 0))
		svc := NewTaskService(repo)

		require.NoError(t, svc.Delete(ctx, 1, 2))
		assertNoWrite(t, repo)
	})

	t.Run("Should treat a failed propagation write as log-only", func(t *testing.T) {
		repo := newFakeTaskRepo(
			seedTask(1, 0, 0, 0),
			seedTask(2, 1, 0, time.Hour),
		)
		repo.failProgress = true
		svc := NewTaskService(repo)

		child, err := svc.GetByID(ctx, 2)
		require.NoError(t, err)
		child.Progress = 100
		// caller never sees the persistence failure
		_, err = svc.Update(ctx, child)
		require.NoError(t, err)
		waitWrite(t, repo)
	})
}

func TestTaskServiceBuckets(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)

	t.Run("Should bucket effective progress, not stale stored values", func(t *testing.T) {
		// parent stored at 0% but both children are done
		repo := newFakeTaskRepo(
			seedTask(1, 0, 0, 0),
			seedTask(2, 1, 100, time.Hour),
			seedTask(3, 1, 100, 2*time.Hour),
		)
		svc := NewTaskService(repo)

		buckets, err := svc.Buckets(ctx, 1, now)
		require.NoError(t, err)
		assert.Len(t, buckets.Completed, 3)
		assert.Empty(t, buckets.Today)
	})

	t.Run("Should report counts consistent with the lists", func(t *testing.T) {
		yesterday := now.AddDate(0, 0, -1)
		overdue := seedTask(1, 0, 20, 0)
		overdue.DueDate = &yesterday

		repo := newFakeTaskRepo(
			overdue,
			seedTask(2, 0, 0, time.Hour),
			seedTask(3, 0, 100, 2*time.Hour),
		)
		svc := NewTaskService(repo)

		buckets, err := svc.Buckets(ctx, 1, now)
		require.NoError(t, err)
		assert.Equal(t, 1, buckets.Counts.Overdue)
		assert.Equal(t, 0, buckets.Counts.DueToday)
		assert.Equal(t, 1, buckets.Counts.NoDueDate)
		assert.Equal(t, 1, buckets.Counts.Completed)
		assert.Len(t, buckets.Notifications, 1)
		assert.Len(t, buckets.Overdue, 1)
	})
}
