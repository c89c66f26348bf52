package tasktree

import (
	"math"
	"strconv"
	"strings"

	"github.com/Jdholguin19/tareas/internal/models"
)

// ComputeProgress returns the effective completion percentage of a task.
//
// Leaf tasks are authoritative: their stored progress is returned as
// is. For a task with subtasks the result is the unweighted average of
// the effective progress of its direct children, rounded half up. Each
// child contributes its own aggregate, so the recursion is correct at
// any nesting depth even though the app only ever creates two levels.
func ComputeProgress(task models.Task, all []models.Task) int {
	children := ChildrenOf(task.ID, all)
	if len(children) == 0 {
		return task.Progress
	}
	total := 0
	for _, child := range children {
		total += ComputeProgress(child, all)
	}
	return int(math.Round(float64(total) / float64(len(children))))
}

// ParseProgress normalizes externally supplied progress values. Raw
// records can carry progress as a number or a percent-formatted string
// ("75%"); anything unparsable counts as 0. The result is clamped to
// [0, 100].
func ParseProgress(v any) int {
	var f float64
	switch p := v.(type) {
	case nil:
		return 0
	case int:
		f = float64(p)
	case int64:
		f = float64(p)
	case float64:
		f = p
	case string:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(p), "%"))
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if f < 0 {
		return 0
	}
	if f > 100 {
		return 100
	}
	return int(math.Round(f))
}
