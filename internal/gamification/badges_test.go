package gamification

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/habitsuz/habits-backend/internal/models"
)

func TestEvaluateBadges_NewUserHasNone(t *testing.T) {
	user := &models.User{Points: 0, Level: 1}
	assert.Empty(t, EvaluateBadges(user, nil, nil))
}

func TestEvaluateBadges_FirstStep(t *testing.T) {
	user := &models.User{}
	habits := []models.Habit{{Title: "Read"}}

	badges := EvaluateBadges(user, habits, nil)
	assert.Equal(t, []string{"first_step"}, badges)
}

func TestEvaluateBadges_WeekWarrior(t *testing.T) {
	user := &models.User{}
	habits := []models.Habit{
		{Title: "Read", Streak: 3},
		{Title: "Run", Streak: 7},
	}

	badges := EvaluateBadges(user, habits, nil)
	assert.Contains(t, badges, "week_warrior")
}

func TestEvaluateBadges_PointsMaster(t *testing.T) {
	user := &models.User{Points: 500}
	assert.Contains(t, EvaluateBadges(user, nil, nil), "points_master")

	user = &models.User{Points: 499}
	assert.NotContains(t, EvaluateBadges(user, nil, nil), "points_master")
}

func TestEvaluateBadges_MultipleInOnePass(t *testing.T) {
	user := &models.User{Points: 600}
	habits := []models.Habit{{Title: "Run", Streak: 9}}

	badges := EvaluateBadges(user, habits, nil)
	assert.ElementsMatch(t, []string{"first_step", "week_warrior", "points_master"}, badges)
}

func TestEvaluateBadges_Idempotent(t *testing.T) {
	user := &models.User{Points: 600}
	habits := []models.Habit{{Title: "Run", Streak: 9}}

	first := EvaluateBadges(user, habits, nil)
	user.Badges = first
	second := EvaluateBadges(user, habits, nil)

	assert.Equal(t, first, second)
}

// Badges are never revoked even when the unlocking condition no longer holds.
func TestEvaluateBadges_Monotonic(t *testing.T) {
	user := &models.User{Points: 500}
	user.Badges = EvaluateBadges(user, nil, nil)
	assert.Contains(t, user.Badges, "points_master")

	user.Points = 0
	badges := EvaluateBadges(user, nil, nil)
	assert.Contains(t, badges, "points_master")
}

func TestEvaluateBadges_DeduplicatesExisting(t *testing.T) {
	user := &models.User{Badges: []string{"first_step", "first_step"}}
	badges := EvaluateBadges(user, nil, nil)
	assert.Equal(t, []string{"first_step"}, badges)
}

// Walks a fresh user through the full journey: first habit, seven toggles,
// then points past 500.
func TestGamificationJourney(t *testing.T) {
	user := &models.User{Points: 0, Level: 1}
	habit := models.Habit{Title: "Meditate"}
	habits := []models.Habit{habit}

	user.Badges = EvaluateBadges(user, habits, nil)
	assert.Equal(t, []string{"first_step"}, user.Badges)

	days := []string{
		"2025-06-01", "2025-06-02", "2025-06-03", "2025-06-04",
		"2025-06-05", "2025-06-06", "2025-06-07",
	}
	for _, d := range days {
		var delta int
		habit.CompletedDates, habit.Streak, delta = ToggleCompletion(habit.CompletedDates, habit.Streak, d)
		user.Points, user.Level = ApplyDelta(user.Points, delta)
		habits[0] = habit
		user.Badges = EvaluateBadges(user, habits, nil)
	}

	assert.Equal(t, 7, habit.Streak)
	assert.Equal(t, 70, user.Points)
	assert.Contains(t, user.Badges, "week_warrior")
	assert.NotContains(t, user.Badges, "points_master")

	// Grind tasks up past 500 points.
	for i := 0; i < 22; i++ {
		_, delta := ToggleTask(false)
		user.Points, user.Level = ApplyDelta(user.Points, delta)
		user.Badges = EvaluateBadges(user, habits, nil)
	}

	assert.Equal(t, 510, user.Points)
	assert.Equal(t, 6, user.Level)

	count := 0
	for _, id := range user.Badges {
		if id == "points_master" {
			count++
		}
	}
	assert.Equal(t, 1, count, "points_master granted exactly once")
}
