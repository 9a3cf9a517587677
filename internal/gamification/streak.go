// Package gamification holds the pure rules behind points, levels, streaks,
// and badges. Nothing here touches storage; callers persist the results.
package gamification

// Habit toggle point values.
const (
	HabitTogglePoints  = 10
	TaskCompletePoints = 20
)

// ToggleCompletion applies a completion toggle for toggledDate to a habit's
// completion set and streak counter.
//
// If toggledDate is absent it is added, the streak goes up by one and the
// caller is owed +10 points. If present it is removed, the streak goes down
// by one (floored at zero) and the caller is owed -10 points.
//
// The streak is a plain counter; it does not verify that toggledDate is
// today or contiguous with prior completions.
func ToggleCompletion(completedDates []string, streak int, toggledDate string) (newDates []string, newStreak int, pointsDelta int) {
	for i, d := range completedDates {
		if d == toggledDate {
			// Present: remove, keeping the rest in order.
			newDates = make([]string, 0, len(completedDates)-1)
			newDates = append(newDates, completedDates[:i]...)
			newDates = append(newDates, completedDates[i+1:]...)
			newStreak = streak - 1
			if newStreak < 0 {
				newStreak = 0
			}
			return newDates, newStreak, -HabitTogglePoints
		}
	}

	// Absent: add.
	newDates = make([]string, 0, len(completedDates)+1)
	newDates = append(newDates, completedDates...)
	newDates = append(newDates, toggledDate)
	return newDates, streak + 1, HabitTogglePoints
}

// ToggleTask flips a task's completed flag. Completing a task is worth +20
// points; un-completing it is free. The asymmetry with habit toggles is
// deliberate.
func ToggleTask(completed bool) (newCompleted bool, pointsDelta int) {
	if completed {
		return false, 0
	}
	return true, TaskCompletePoints
}
