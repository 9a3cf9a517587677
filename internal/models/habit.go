package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category labels habits and tasks. Descriptive only; never validated
// against behavior.
type Category string

const (
	CategoryWork     Category = "Work"
	CategoryStudy    Category = "Study"
	CategoryFitness  Category = "Fitness"
	CategoryPersonal Category = "Personal"
)

// Frequency describes how often a habit is intended to be done. It is not
// enforced against completion dates.
type Frequency string

const (
	FrequencyDaily  Frequency = "Daily"
	FrequencyWeekly Frequency = "Weekly"
)

type Habit struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"-"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"-"`

	Title     string    `bson:"title" json:"title"`
	Category  Category  `bson:"category" json:"category"`
	Frequency Frequency `bson:"frequency" json:"frequency"`

	// CompletedDates holds "YYYY-MM-DD" strings, unique within the slice.
	// Storage order is meaningless; the streak counter is maintained by the
	// gamification engine on toggle, not recomputed from the dates.
	CompletedDates []string `bson:"completed_dates" json:"completedDates"`
	Streak         int      `bson:"streak" json:"streak"`
}
