// Package tasktree contains the pure task-hierarchy logic: relationship
// queries over a flat task snapshot, progress aggregation and the
// date-bucketed views. Nothing here touches the database; callers pass
// the full task collection and get fresh slices back.
package tasktree

import (
	"sort"

	"github.com/Jdholguin19/tareas/internal/models"
)

// ChildrenOf returns the direct children of taskID, ordered by creation
// time ascending. Ties keep the input order.
func ChildrenOf(taskID int64, all []models.Task) []models.Task {
	var children []models.Task
	for _, t := range all {
		if t.ParentID == taskID {
			children = append(children, t)
		}
	}
	sort.SliceStable(children, func(i, j int) bool {
		return children[i].CreatedAt.Before(children[j].CreatedAt)
	})
	return children
}

// HasChildren reports whether the task has at least one direct child.
func HasChildren(task models.Task, all []models.Task) bool {
	for _, t := range all {
		if t.ParentID == task.ID {
			return true
		}
	}
	return false
}

// AncestorsOf walks the parent chain from task up to the root. A parent
// reference that points at a missing task ends the walk; it is not an
// error. The result is ordered nearest parent first.
func AncestorsOf(task models.Task, all []models.Task) []models.Task {
	byID := indexByID(all)
	var chain []models.Task
	cur := task
	for cur.ParentID != models.RootParentID {
		parent, ok := byID[cur.ParentID]
		if !ok {
			break
		}
		chain = append(chain, parent)
		cur = parent
	}
	return chain
}

// DescendantsOf returns every task transitively reachable from taskID
// through parent references, breadth first. The input must be acyclic;
// the caller owns that contract.
func DescendantsOf(taskID int64, all []models.Task) []models.Task {
	var out []models.Task
	queue := []int64{taskID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range ChildrenOf(id, all) {
			out = append(out, child)
			queue = append(queue, child.ID)
		}
	}
	return out
}

func indexByID(all []models.Task) map[int64]models.Task {
	byID := make(map[int64]models.Task, len(all))
	for _, t := range all {
		byID[t.ID] = t
	}
	return byID
}
