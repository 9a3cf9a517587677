package gamification

import "github.com/habitsuz/habits-backend/internal/models"

// Badge is a catalog entry: a stable identifier plus its unlock predicate.
// Adding a badge means adding a row here; the evaluator treats every entry
// uniformly.
type Badge struct {
	ID          string
	Name        string
	Description string
	Unlock      func(user *models.User, habits []models.Habit, tasks []models.Task) bool
}

// Catalog is the fixed badge set. Predicates are independent and order does
// not matter: all that match in one pass are granted together.
var Catalog = []Badge{
	{
		ID:          "first_step",
		Name:        "First Step",
		Description: "Create your first habit",
		Unlock: func(_ *models.User, habits []models.Habit, _ []models.Task) bool {
			return len(habits) > 0
		},
	},
	{
		ID:          "week_warrior",
		Name:        "Week Warrior",
		Description: "Reach a 7-day streak on any habit",
		Unlock: func(_ *models.User, habits []models.Habit, _ []models.Task) bool {
			for _, h := range habits {
				if h.Streak >= 7 {
					return true
				}
			}
			return false
		},
	},
	{
		ID:          "points_master",
		Name:        "Points Master",
		Description: "Accumulate 500 points",
		Unlock: func(user *models.User, _ []models.Habit, _ []models.Task) bool {
			return user.Points >= 500
		},
	},
}

// EvaluateBadges returns the user's badge set merged with every catalog
// badge whose predicate currently holds. Already-granted badges are kept
// without re-evaluation: grants are permanent even if the triggering
// condition later becomes false, and evaluating twice on the same state
// never duplicates an id.
func EvaluateBadges(user *models.User, habits []models.Habit, tasks []models.Task) []string {
	owned := make(map[string]bool, len(user.Badges))
	merged := make([]string, 0, len(user.Badges))
	for _, id := range user.Badges {
		if !owned[id] {
			owned[id] = true
			merged = append(merged, id)
		}
	}

	for _, b := range Catalog {
		if owned[b.ID] {
			continue
		}
		if b.Unlock(user, habits, tasks) {
			owned[b.ID] = true
			merged = append(merged, b.ID)
		}
	}
	return merged
}
