package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Priority of a task. Descriptive only.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

type Task struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"-"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"-"`

	Title     string     `bson:"title" json:"title"`
	Completed bool       `bson:"completed" json:"completed"`
	Priority  Priority   `bson:"priority" json:"priority"`
	Category  Category   `bson:"category" json:"category"`
	DueDate   *time.Time `bson:"due_date,omitempty" json:"dueDate,omitempty"`
}
