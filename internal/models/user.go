package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	Username string `bson:"username" json:"username"`
	Email    string `bson:"email" json:"email"`
	Password string `bson:"password" json:"-"` // Never returned in JSON

	// Gamification counters. Level is always derived from Points
	// (floor(points/100)+1) and is rewritten on every engine run, never
	// mutated independently.
	Points int      `bson:"points" json:"points"`
	Level  int      `bson:"level" json:"level"`
	Streak int      `bson:"streak" json:"streak"` // legacy global streak; per-habit streaks drive badges
	Badges []string `bson:"badges" json:"badges"`

	Bio               string `bson:"bio,omitempty" json:"bio,omitempty"`
	JobTitle          string `bson:"job_title,omitempty" json:"jobTitle,omitempty"`
	AvatarURL         string `bson:"avatar_url,omitempty" json:"avatarUrl,omitempty"`
	HasSeenOnboarding bool   `bson:"has_seen_onboarding" json:"hasSeenOnboarding"`
}

// PublicUser is the view exposed on the leaderboard and on chat messages.
// Only fields safe for other users to see.
type PublicUser struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Points    int    `json:"points"`
	Level     int    `json:"level"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// Public strips the user down to its leaderboard/chat view.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID.Hex(),
		Username:  u.Username,
		Points:    u.Points,
		Level:     u.Level,
		AvatarURL: u.AvatarURL,
	}
}
