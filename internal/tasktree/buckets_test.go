package tasktree

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jdholguin19/tareas/internal/models"
)

func dueTask(id, parentID int64, progress int, due time.Time) models.Task {
	t := testTask(id, parentID, progress, time.Duration(id)*time.Minute)
	t.DueDate = &due
	return t
}

func ids(tasks []models.Task) []int64 {
	out := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestStartOfDay(t *testing.T) {
	t.Run("Should truncate to local midnight", func(t *testing.T) {
		loc := time.FixedZone("UTC-5", -5*3600)
		got := StartOfDay(time.Date(2024, 6, 1, 23, 45, 12, 999, loc))
		assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, loc), got)
	})
}

func TestBuckets(t *testing.T) {
	today := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)
	tomorrow := today.AddDate(0, 0, 1)

	t.Run("Should never mark a task due today as overdue", func(t *testing.T) {
		task := dueTask(1, 0, 0, today)
		all := []models.Task{task}
		assert.False(t, IsOverdue(task, today))
		assert.Empty(t, OverdueView(all, today))
		assert.Empty(t, OverdueNotifications(all, today))
		assert.Equal(t, []int64{1}, ids(TodayOrUndated(all, today)))
	})

	t.Run("Should exclude completed tasks from every date bucket", func(t *testing.T) {
		all := []models.Task{
			dueTask(1, 0, 100, yesterday),
			dueTask(2, 0, 100, today),
			dueTask(3, 0, 100, tomorrow),
		}
		assert.Empty(t, OverdueView(all, today))
		assert.Empty(t, TodayOrUndated(all, today))
		assert.Empty(t, PendingFuture(all, today))
		assert.Equal(t, []int64{1, 2, 3}, ids(CompletedTasks(all)))
	})

	t.Run("Should put future tasks in pending and today's in the today bucket", func(t *testing.T) {
		all := []models.Task{
			dueTask(1, 0, 0, tomorrow),
			dueTask(2, 0, 0, today),
			testTask(3, 0, 0, 0), // undated
		}
		assert.Equal(t, []int64{1}, ids(PendingFuture(all, today)))
		assert.Equal(t, []int64{2, 3}, ids(TodayOrUndated(all, today)))
	})

	t.Run("Should expand the overdue view with the direct parent only", func(t *testing.T) {
		parent := dueTask(1, 0, 0, tomorrow) // not overdue itself
		child := dueTask(2, 1, 0, yesterday)
		sibling := dueTask(3, 1, 0, tomorrow) // same parent, not overdue
		all := []models.Task{parent, child, sibling}

		view := OverdueView(all, today)
		assert.Equal(t, []int64{1, 2}, ids(view))

		// the notification subset carries no context tasks
		assert.Equal(t, []int64{2}, ids(OverdueNotifications(all, today)))
	})

	t.Run("Should not pull grandparents or descendants into the overdue view", func(t *testing.T) {
		root := testTask(1, 0, 0, 0)
		mid := dueTask(2, 1, 0, yesterday)
		leaf := dueTask(3, 2, 0, tomorrow)
		all := []models.Task{root, mid, leaf}

		assert.Equal(t, []int64{1, 2}, ids(OverdueView(all, today)))
	})

	t.Run("Should not duplicate an overdue parent used as context", func(t *testing.T) {
		parent := dueTask(1, 0, 0, yesterday)
		child := dueTask(2, 1, 0, yesterday)
		all := []models.Task{parent, child}

		assert.Equal(t, []int64{1, 2}, ids(OverdueView(all, today)))
		assert.Equal(t, []int64{1, 2}, ids(OverdueNotifications(all, today)))
	})

	t.Run("Should skip context expansion when the parent is missing", func(t *testing.T) {
		orphan := dueTask(2, 99, 0, yesterday)
		all := []models.Task{orphan}
		assert.Equal(t, []int64{2}, ids(OverdueView(all, today)))
	})

	t.Run("Should be idempotent over an unchanged snapshot", func(t *testing.T) {
		all := []models.Task{
			dueTask(1, 0, 0, yesterday),
			dueTask(2, 1, 0, today),
			dueTask(3, 0, 100, yesterday),
			testTask(4, 0, 0, 0),
		}
		assert.Equal(t, OverdueView(all, today), OverdueView(all, today))
		assert.Equal(t, TodayOrUndated(all, today), TodayOrUndated(all, today))
		assert.Equal(t, PendingFuture(all, today), PendingFuture(all, today))
		assert.Equal(t, CompletedTasks(all), CompletedTasks(all))
		assert.Equal(t, OverdueNotifications(all, today), OverdueNotifications(all, today))
	})

	t.Run("Should keep header counts in step with the today bucket", func(t *testing.T) {
		all := []models.Task{
			dueTask(1, 0, 0, today),
			dueTask(2, 0, 0, today),
			testTask(3, 0, 0, 0),
			dueTask(4, 0, 100, today), // completed, excluded everywhere
			dueTask(5, 0, 0, tomorrow),
		}
		assert.Equal(t, 2, CountDueToday(all, today))
		assert.Equal(t, 1, CountNoDueDate(all))
		assert.Len(t, TodayOrUndated(all, today), CountDueToday(all, today)+CountNoDueDate(all))
	})

	t.Run("Should compare calendar days across time zones", func(t *testing.T) {
		// due date stored as a UTC midnight DATE, "today" in UTC-6
		loc := time.FixedZone("UTC-6", -6*3600)
		localToday := time.Date(2024, 6, 1, 0, 0, 0, 0, loc)
		dueSameDay := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

		task := dueTask(1, 0, 0, dueSameDay)
		assert.False(t, IsOverdue(task, localToday))
		assert.Equal(t, []int64{1}, ids(TodayOrUndated([]models.Task{task}, localToday)))
	})
}

func TestBucketsScenario(t *testing.T) {
	// tasks = [{1, root, no due, 0%}, {2, child of 1, due 2024-01-01, 100%},
	// {3, child of 1, no due, 0%}] with today = 2024-06-01
	today := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	oldDue := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	task1 := testTask(1, 0, 0, 0)
	task2 := dueTask(2, 1, 100, oldDue)
	task3 := testTask(3, 1, 0, time.Hour)
	all := []models.Task{task1, task2, task3}

	t.Run("Should aggregate the parent to 50", func(t *testing.T) {
		assert.Equal(t, 50, ComputeProgress(task1, all))
	})
	t.Run("Should bucket the incomplete tasks as today-or-undated", func(t *testing.T) {
		assert.Equal(t, []int64{1, 3}, ids(TodayOrUndated(all, today)))
	})
	t.Run("Should show the completed subtask only in completed", func(t *testing.T) {
		require.Equal(t, []int64{2}, ids(CompletedTasks(all)))
		assert.Empty(t, OverdueView(all, today))
		assert.Empty(t, PendingFuture(all, today))
	})
}
