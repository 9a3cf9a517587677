package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxMessageLength is the cap on community chat message text.
const MaxMessageLength = 500

// Message is a single community chat message. Messages are immutable once
// created and visible to every authenticated user. They reference their
// author by id but outlive the author's account.
type Message struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID    primitive.ObjectID `bson:"user_id" json:"-"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// MessageView is a message joined with its author's public identity, the
// shape the chat endpoints return. Authors that no longer exist resolve to
// the fallback identity below.
type MessageView struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	UserID     string    `json:"userId"`
	Username   string    `json:"username"`
	UserAvatar string    `json:"userAvatar,omitempty"`
	UserLevel  int       `json:"userLevel"`
	CreatedAt  time.Time `json:"createdAt"`
}

const (
	DeletedUserID   = "deleted"
	DeletedUserName = "Deleted user"
)
