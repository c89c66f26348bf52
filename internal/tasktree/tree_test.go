package tasktree

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jdholguin19/tareas/internal/models"
)

var testEpoch = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func testTask(id, parentID int64, progress int, createdOffset time.Duration) models.Task {
	return models.Task{
		ID:        id,
		Title:     "task",
		State:     models.StateForProgress(progress),
		Progress:  progress,
		CreatedAt: testEpoch.Add(createdOffset),
		ParentID:  parentID,
	}
}

func TestChildrenOf(t *testing.T) {
	t.Run("Should return direct children ordered by creation time", func(t *testing.T) {
		all := []models.Task{
			testTask(1, 0, 0, 0),
			testTask(3, 1, 0, 2*time.Hour),
			testTask(2, 1, 0, time.Hour),
			testTask(4, 2, 0, 3*time.Hour), // grandchild, not a direct child of 1
		}
		children := ChildrenOf(1, all)
		require.Len(t, children, 2)
		assert.Equal(t, int64(2), children[0].ID)
		assert.Equal(t, int64(3), children[1].ID)
	})
	t.Run("Should keep input order on creation time ties", func(t *testing.T) {
		all := []models.Task{
			testTask(1, 0, 0, 0),
			testTask(5, 1, 0, time.Hour),
			testTask(6, 1, 0, time.Hour),
		}
		children := ChildrenOf(1, all)
		require.Len(t, children, 2)
		assert.Equal(t, int64(5), children[0].ID)
		assert.Equal(t, int64(6), children[1].ID)
	})
	t.Run("Should return empty for a leaf", func(t *testing.T) {
		all := []models.Task{testTask(1, 0, 0, 0)}
		assert.Empty(t, ChildrenOf(1, all))
	})
}

func TestHasChildren(t *testing.T) {
	all := []models.Task{
		testTask(1, 0, 0, 0),
		testTask(2, 1, 0, time.Hour),
	}
	t.Run("Should be true for a parent", func(t *testing.T) {
		assert.True(t, HasChildren(all[0], all))
	})
	t.Run("Should be false for a leaf", func(t *testing.T) {
		assert.False(t, HasChildren(all[1], all))
	})
}

func TestAncestorsOf(t *testing.T) {
	t.Run("Should walk the parent chain nearest first", func(t *testing.T) {
		all := []models.Task{
			testTask(1, 0, 0, 0),
			testTask(2, 1, 0, time.Hour),
			testTask(3, 2, 0, 2*time.Hour),
		}
		chain := AncestorsOf(all[2], all)
		require.Len(t, chain, 2)
		assert.Equal(t, int64(2), chain[0].ID)
		assert.Equal(t, int64(1), chain[1].ID)
	})
	t.Run("Should stop at a missing parent without error", func(t *testing.T) {
		all := []models.Task{
			testTask(2, 99, 0, 0), // parent 99 does not exist
			testTask(3, 2, 0, time.Hour),
		}
		chain := AncestorsOf(all[1], all)
		require.Len(t, chain, 1)
		assert.Equal(t, int64(2), chain[0].ID)
	})
	t.Run("Should return empty for a root task", func(t *testing.T) {
		all := []models.Task{testTask(1, 0, 0, 0)}
		assert.Empty(t, AncestorsOf(all[0], all))
	})
}

func TestDescendantsOf(t *testing.T) {
	t.Run("Should collect all levels breadth first", func(t *testing.T) {
		all := []models.Task{
			testTask(1, 0, 0, 0),
			testTask(2, 1, 0, time.Hour),
			testTask(3, 1, 0, 2*time.Hour),
			testTask(4, 2, 0, 3*time.Hour),
		}
		desc := DescendantsOf(1, all)
		require.Len(t, desc, 3)
		assert.Equal(t, int64(2), desc[0].ID)
		assert.Equal(t, int64(3), desc[1].ID)
		assert.Equal(t, int64(4), desc[2].ID)
	})
	t.Run("Should return empty for a leaf", func(t *testing.T) {
		all := []models.Task{testTask(1, 0, 0, 0)}
		assert.Empty(t, DescendantsOf(1, all))
	})
}
