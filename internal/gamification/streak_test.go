package gamification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToggleCompletion_AddDate(t *testing.T) {
	dates, streak, delta := ToggleCompletion([]string{"2025-01-01"}, 1, "2025-01-02")

	assert.Equal(t, []string{"2025-01-01", "2025-01-02"}, dates)
	assert.Equal(t, 2, streak)
	assert.Equal(t, 10, delta)
}

func TestToggleCompletion_RemoveDate(t *testing.T) {
	dates, streak, delta := ToggleCompletion([]string{"2025-01-01", "2025-01-02"}, 2, "2025-01-01")

	assert.Equal(t, []string{"2025-01-02"}, dates)
	assert.Equal(t, 1, streak)
	assert.Equal(t, -10, delta)
}

func TestToggleCompletion_StreakFloorsAtZero(t *testing.T) {
	_, streak, delta := ToggleCompletion([]string{"2025-01-01"}, 0, "2025-01-01")

	assert.Equal(t, 0, streak)
	assert.Equal(t, -10, delta)
}

func TestToggleCompletion_EmptySet(t *testing.T) {
	dates, streak, delta := ToggleCompletion(nil, 0, "2025-03-15")

	assert.Equal(t, []string{"2025-03-15"}, dates)
	assert.Equal(t, 1, streak)
	assert.Equal(t, 10, delta)
}

// Streaks are plain counters: toggling non-consecutive dates still increments.
func TestToggleCompletion_NoContiguityCheck(t *testing.T) {
	dates := []string{}
	streak := 0
	for _, d := range []string{"2025-01-01", "2025-02-14", "2024-12-25"} {
		dates, streak, _ = ToggleCompletion(dates, streak, d)
	}
	assert.Equal(t, 3, streak)
	assert.Len(t, dates, 3)
}

func TestToggleCompletion_DoubleToggleIsInverse(t *testing.T) {
	orig := []string{"2025-01-01", "2025-01-03"}
	origStreak := 2

	dates, streak, d1 := ToggleCompletion(orig, origStreak, "2025-01-05")
	dates, streak, d2 := ToggleCompletion(dates, streak, "2025-01-05")

	assert.ElementsMatch(t, orig, dates)
	assert.Equal(t, origStreak, streak)
	assert.Equal(t, 0, d1+d2)
}

func TestToggleTask(t *testing.T) {
	completed, delta := ToggleTask(false)
	assert.True(t, completed)
	assert.Equal(t, 20, delta)

	completed, delta = ToggleTask(true)
	assert.False(t, completed)
	assert.Equal(t, 0, delta, "un-completing a task carries no penalty")
}
