package tasktree

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Jdholguin19/tareas/internal/models"
)

func TestComputeProgress(t *testing.T) {
	t.Run("Should return stored progress for a leaf", func(t *testing.T) {
		all := []models.Task{testTask(1, 0, 37, 0)}
		assert.Equal(t, 37, ComputeProgress(all[0], all))
	})
	t.Run("Should average direct children", func(t *testing.T) {
		all := []models.Task{
			testTask(1, 0, 0, 0),
			testTask(2, 1, 100, time.Hour),
			testTask(3, 1, 0, 2*time.Hour),
		}
		assert.Equal(t, 50, ComputeProgress(all[0], all))
	})
	t.Run("Should ignore the parent's own stored value when it has children", func(t *testing.T) {
		all := []models.Task{
			testTask(1, 0, 90, 0), // stale stored value
			testTask(2, 1, 20, time.Hour),
			testTask(3, 1, 40, 2*time.Hour),
		}
		assert.Equal(t, 30, ComputeProgress(all[0], all))
	})
	t.Run("Should aggregate recursively through intermediate parents", func(t *testing.T) {
		// 1 -> {2, 3}; 2 -> {4:100, 5:50}. Effective: 2=75, 3=25, 1=50.
		all := []models.Task{
			testTask(1, 0, 0, 0),
			testTask(2, 1, 0, time.Hour),
			testTask(3, 1, 25, 2*time.Hour),
			testTask(4, 2, 100, 3*time.Hour),
			testTask(5, 2, 50, 4*time.Hour),
		}
		assert.Equal(t, 75, ComputeProgress(all[1], all))
		assert.Equal(t, 50, ComputeProgress(all[0], all))
	})
	t.Run("Should round half up", func(t *testing.T) {
		all := []models.Task{
			testTask(1, 0, 0, 0),
			testTask(2, 1, 1, time.Hour),
			testTask(3, 1, 2, 2*time.Hour),
		}
		// average 1.5 rounds to 2
		assert.Equal(t, 2, ComputeProgress(all[0], all))
	})
	t.Run("Should reflect the remaining children after a delete", func(t *testing.T) {
		all := []models.Task{
			testTask(1, 0, 75, 0),
			testTask(2, 1, 100, time.Hour),
			testTask(3, 1, 50, 2*time.Hour),
		}
		assert.Equal(t, 75, ComputeProgress(all[0], all))
		// drop the 50% child; parent recomputes to 100
		remaining := []models.Task{all[0], all[1]}
		assert.Equal(t, 100, ComputeProgress(remaining[0], remaining))
	})
}

func TestParseProgress(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want int
	}{
		{"percent string", "75%", 75},
		{"plain string", "40", 40},
		{"garbage string", "abc", 0},
		{"empty string", "", 0},
		{"number", float64(80), 80},
		{"int", 80, 80},
		{"nil", nil, 0},
		{"fractional rounds", 49.5, 50},
		{"negative clamps", -10, 0},
		{"over 100 clamps", "250%", 100},
		{"unknown type", struct{}{}, 0},
	}
	for _, tc := range cases {
		t.Run("Should parse "+tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseProgress(tc.in))
		})
	}
}
