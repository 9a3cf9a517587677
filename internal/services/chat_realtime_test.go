package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/habitsuz/habits-backend/internal/database"
	"github.com/habitsuz/habits-backend/internal/models"
)

func testChatEvent(text string) ChatEvent {
	return ChatEvent{
		Type: EventTypeMessage,
		Message: &models.MessageView{
			ID:       primitive.NewObjectID().Hex(),
			Text:     text,
			Username: "ines",
		},
		Timestamp: time.Now().UTC(),
	}
}

func TestChatHubFanOut(t *testing.T) {
	t.Run("delivers to every subscriber", func(t *testing.T) {
		ch1, unsub1 := SubscribeChat()
		defer unsub1()
		ch2, unsub2 := SubscribeChat()
		defer unsub2()

		evt := testChatEvent("hello")
		Hub().fanOut(evt)

		got1 := <-ch1
		got2 := <-ch2
		assert.Equal(t, "hello", got1.Message.Text)
		assert.Equal(t, "hello", got2.Message.Text)
	})

	t.Run("unsubscribe closes the channel", func(t *testing.T) {
		before := Hub().SubscriberCount()

		ch, unsub := SubscribeChat()
		assert.Equal(t, before+1, Hub().SubscriberCount())

		unsub()
		assert.Equal(t, before, Hub().SubscriberCount())

		_, open := <-ch
		assert.False(t, open)
	})

	t.Run("unsubscribe is idempotent", func(t *testing.T) {
		_, unsub := SubscribeChat()
		unsub()
		unsub()
	})

	t.Run("slow subscriber does not block fan-out", func(t *testing.T) {
		ch, unsub := SubscribeChat()
		defer unsub()

		// Overflow the subscriber buffer without ever draining it.
		for i := 0; i < 100; i++ {
			Hub().fanOut(testChatEvent("burst"))
		}

		assert.Len(t, ch, cap(ch))
	})
}

func TestPublishChatMessage(t *testing.T) {
	setupTestRedis(t)

	sub := database.RedisClient.Subscribe(context.Background(), chatChannel)
	defer sub.Close()

	// Wait for the subscription to be active before publishing.
	_, err := sub.Receive(context.Background())
	require.NoError(t, err)

	view := &models.MessageView{
		ID:       primitive.NewObjectID().Hex(),
		Text:     "hello everyone",
		Username: "marco",
	}
	require.NoError(t, PublishChatMessage(context.Background(), view))

	msg, err := sub.ReceiveMessage(context.Background())
	require.NoError(t, err)

	var event ChatEvent
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
	assert.Equal(t, EventTypeMessage, event.Type)
	require.NotNil(t, event.Message)
	assert.Equal(t, "hello everyone", event.Message.Text)
	assert.Equal(t, view.ID, event.Message.ID)
}
