package tasktree

import (
	"time"

	"github.com/Jdholguin19/tareas/internal/models"
)

// All date comparisons in this file are by calendar day at local
// midnight. Callers compute "today" once per evaluation pass with
// StartOfDay and hand it to every bucket function so a pass that spans
// midnight stays self consistent.

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// IsCompleted reports whether the task counts as done (progress at
// 100), regardless of any due date.
func IsCompleted(t models.Task) bool {
	return t.Progress >= 100
}

// IsOverdue reports whether the task has a due date strictly before
// today and is not completed. A task due today is never overdue.
func IsOverdue(t models.Task, today time.Time) bool {
	if t.DueDate == nil || IsCompleted(t) {
		return false
	}
	return dueDay(t, today).Before(today)
}

// TodayOrUndated returns the not-completed tasks that either have no
// due date or are due today.
func TodayOrUndated(all []models.Task, today time.Time) []models.Task {
	tomorrow := today.AddDate(0, 0, 1)
	var out []models.Task
	for _, t := range all {
		if IsCompleted(t) {
			continue
		}
		if t.DueDate == nil {
			out = append(out, t)
			continue
		}
		due := dueDay(t, today)
		if !due.Before(today) && due.Before(tomorrow) {
			out = append(out, t)
		}
	}
	return out
}

// OverdueView returns the overdue tasks expanded with hierarchy
// context: for every overdue task its direct parent is included as
// well, even when the parent itself is not overdue. The parent appears
// just before its first overdue child and no task is listed twice.
// Only the direct parent is pulled in, not the full ancestor chain or
// any descendants, so the view stays focused on what is actually late.
func OverdueView(all []models.Task, today time.Time) []models.Task {
	byID := indexByID(all)
	seen := make(map[int64]bool)
	var out []models.Task
	for _, t := range all {
		if !IsOverdue(t, today) {
			continue
		}
		if t.ParentID != models.RootParentID {
			if parent, ok := byID[t.ParentID]; ok && !seen[parent.ID] {
				seen[parent.ID] = true
				out = append(out, parent)
			}
		}
		if !seen[t.ID] {
			seen[t.ID] = true
			out = append(out, t)
		}
	}
	return out
}

// OverdueNotifications returns the genuinely overdue tasks with no
// context expansion. Badge counts and dropdown lists use this subset so
// the numbers reflect only tasks that are actually late.
func OverdueNotifications(all []models.Task, today time.Time) []models.Task {
	var out []models.Task
	for _, t := range all {
		if IsOverdue(t, today) {
			out = append(out, t)
		}
	}
	return out
}

// PendingFuture returns the not-completed tasks due strictly after
// today. Tasks due today belong to TodayOrUndated, not here.
func PendingFuture(all []models.Task, today time.Time) []models.Task {
	var out []models.Task
	for _, t := range all {
		if IsCompleted(t) || t.DueDate == nil {
			continue
		}
		if dueDay(t, today).After(today) {
			out = append(out, t)
		}
	}
	return out
}

// CompletedTasks returns every completed task, regardless of date.
func CompletedTasks(all []models.Task) []models.Task {
	var out []models.Task
	for _, t := range all {
		if IsCompleted(t) {
			out = append(out, t)
		}
	}
	return out
}

// CountDueToday counts the not-completed tasks due today, using the
// same predicate as TodayOrUndated so section headers never diverge
// from list contents.
func CountDueToday(all []models.Task, today time.Time) int {
	tomorrow := today.AddDate(0, 0, 1)
	n := 0
	for _, t := range all {
		if IsCompleted(t) || t.DueDate == nil {
			continue
		}
		due := dueDay(t, today)
		if !due.Before(today) && due.Before(tomorrow) {
			n++
		}
	}
	return n
}

// CountNoDueDate counts the not-completed tasks without a due date.
func CountNoDueDate(all []models.Task) int {
	n := 0
	for _, t := range all {
		if !IsCompleted(t) && t.DueDate == nil {
			n++
		}
	}
	return n
}

// dueDay projects the task's due date onto a calendar day in the same
// location as the reference day, so a DATE scanned in UTC compares
// correctly against local midnight.
func dueDay(t models.Task, today time.Time) time.Time {
	y, m, d := t.DueDate.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, today.Location())
}
