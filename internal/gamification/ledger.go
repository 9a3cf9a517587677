package gamification

// PointsPerLevel is the fixed level divisor: level = floor(points/100) + 1.
const PointsPerLevel = 100

// ApplyDelta adds a signed point delta to the cumulative ledger. Points are
// floored at zero regardless of delta magnitude, and the level is derived
// from the new total. The level is never an input: callers must overwrite
// whatever level they held with the returned one.
func ApplyDelta(currentPoints, delta int) (newPoints, newLevel int) {
	newPoints = currentPoints + delta
	if newPoints < 0 {
		newPoints = 0
	}
	return newPoints, LevelForPoints(newPoints)
}

// LevelForPoints derives the level for a point total.
func LevelForPoints(points int) int {
	return points/PointsPerLevel + 1
}
