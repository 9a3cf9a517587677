package handlers

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/habitsuz/habits-backend/internal/database"
	"github.com/habitsuz/habits-backend/internal/models"
)

func TestChatTextTooLong(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		tooLong bool
	}{
		{"empty", "", false},
		{"at the limit", strings.Repeat("a", models.MaxMessageLength), false},
		{"one over", strings.Repeat("a", models.MaxMessageLength+1), true},
		// Cyrillic runs two bytes per character; the limit counts
		// characters, so a full-length message still fits.
		{"multibyte at the limit", strings.Repeat("ш", models.MaxMessageLength), false},
		{"multibyte one over", strings.Repeat("ш", models.MaxMessageLength+1), true},
		{"emoji within the limit", strings.Repeat("🔥", 300), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.tooLong, chatTextTooLong(tt.text))
		})
	}
}

// captureFrames returns a send func that records every outbound frame.
func captureFrames() (func(interface{}), *[]interface{}) {
	var frames []interface{}
	return func(frame interface{}) {
		frames = append(frames, frame)
	}, &frames
}

func TestHandleIncomingChatMessageValidation(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), Username: "maria", Level: 2}

	t.Run("rejects oversized text", func(t *testing.T) {
		send, frames := captureFrames()

		handleIncomingChatMessage(context.Background(), send, user, strings.Repeat("a", models.MaxMessageLength+1))

		require.Len(t, *frames, 1)
		frame, ok := (*frames)[0].(map[string]string)
		require.True(t, ok)
		assert.Equal(t, "error", frame["type"])
	})

	t.Run("rejects blank text", func(t *testing.T) {
		send, frames := captureFrames()

		handleIncomingChatMessage(context.Background(), send, user, "   ")

		require.Len(t, *frames, 1)
	})
}

func TestHandleIncomingChatMessageAcceptsMultibyte(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("full-length cyrillic message persists without an error frame", func(mt *mtest.T) {
		prevDB := database.DB
		database.DB = mt.DB
		mt.Cleanup(func() { database.DB = prevDB })

		srv := miniredis.RunT(mt)
		prevRedis := database.RedisClient
		database.RedisClient = redis.NewClient(&redis.Options{Addr: srv.Addr()})
		mt.Cleanup(func() { database.RedisClient = prevRedis })

		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		user := &models.User{ID: primitive.NewObjectID(), Username: "maria", Level: 2}
		send, frames := captureFrames()

		// 300 characters, 600 bytes. Counting bytes would reject this.
		handleIncomingChatMessage(context.Background(), send, user, strings.Repeat("ш", 300))

		assert.Empty(mt, *frames, "a valid message must not produce an error frame")
	})
}
