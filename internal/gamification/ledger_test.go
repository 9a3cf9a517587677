package gamification

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestApplyDelta(t *testing.T) {
	tests := []struct {
		name       string
		points     int
		delta      int
		wantPoints int
		wantLevel  int
	}{
		{"habit toggle on", 0, 10, 10, 1},
		{"habit toggle off", 10, -10, 0, 1},
		{"task completion", 90, 20, 110, 2},
		{"floor at zero", 5, -10, 0, 1},
		{"large penalty floors", 30, -1000, 0, 1},
		{"level boundary below", 99, 0, 99, 1},
		{"level boundary at", 100, 0, 100, 2},
		{"points master territory", 490, 10, 500, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, level := ApplyDelta(tt.points, tt.delta)
			assert.Equal(t, tt.wantPoints, points)
			assert.Equal(t, tt.wantLevel, level)
		})
	}
}

func TestLedgerProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("points never negative", prop.ForAll(
		func(points, delta int) bool {
			newPoints, _ := ApplyDelta(points, delta)
			return newPoints >= 0
		},
		gen.IntRange(0, 1_000_000),
		gen.IntRange(-1_000_000, 1_000_000),
	))

	properties.Property("level always floor(points/100)+1", prop.ForAll(
		func(points, delta int) bool {
			newPoints, newLevel := ApplyDelta(points, delta)
			return newLevel == newPoints/100+1
		},
		gen.IntRange(0, 1_000_000),
		gen.IntRange(-1_000_000, 1_000_000),
	))

	properties.Property("double habit toggle never changes points once above the floor", prop.ForAll(
		func(points int) bool {
			p1, _ := ApplyDelta(points, HabitTogglePoints)
			p2, _ := ApplyDelta(p1, -HabitTogglePoints)
			return p2 == points
		},
		gen.IntRange(0, 1_000_000),
	))

	properties.TestingRun(t)
}
