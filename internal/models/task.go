// internal/models/task.go
package models

import "time"

// TaskState defines the possible states for a task. State is derived
// from progress, never set independently: 0 -> pending, 1..99 ->
// in_progress, 100 -> completed.
type TaskState string

const (
	StatePending    TaskState = "pending"
	StateInProgress TaskState = "in_progress"
	StateCompleted  TaskState = "completed"
)

// StateForProgress returns the state implied by a progress percentage.
func StateForProgress(progress int) TaskState {
	switch {
	case progress >= 100:
		return StateCompleted
	case progress > 0:
		return StateInProgress
	default:
		return StatePending
	}
}

// RootParentID is the sentinel for tasks without a parent.
const RootParentID int64 = 0

// Task represents the structure of a task in the system.
//
// Progress is authoritative only for leaf tasks; for tasks with
// subtasks the stored value tracks the aggregate of the children and
// may be transiently stale until the next recompute.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	State       TaskState  `json:"state"`
	Progress    int        `json:"progress"`
	CreatedAt   time.Time  `json:"created_at"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	OwnerID     int64      `json:"owner_id"`
	AssigneeID  *int64     `json:"assignee_id,omitempty"`
	ProjectID   *int64     `json:"project_id,omitempty"`
	ParentID    int64      `json:"parent_id"`
	Attachments []string   `json:"attachments"`
}

// IsRoot reports whether the task has no parent.
func (t Task) IsRoot() bool {
	return t.ParentID == RootParentID
}

// Project is a purely referential grouping for tasks. Tasks without a
// project fall back to the "General" default on output.
type Project struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DefaultProjectName is used for tasks whose project reference is unset.
const DefaultProjectName = "General"

// TaskFilter defines the available parameters for filtering tasks.
type TaskFilter struct {
	OwnerID    *int64
	AssigneeID *int64
	ProjectID  *int64
	ParentID   *int64
	State      *TaskState
}
