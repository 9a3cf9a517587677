package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/habitsuz/habits-backend/internal/database"
	"github.com/habitsuz/habits-backend/internal/models"
)

// chatChannel is the Redis Pub/Sub channel carrying community chat events,
// so every instance fans out messages created on any instance.
const chatChannel = "chat:community"

// ChatEvent is the payload broadcast over Redis and WebSocket.
type ChatEvent struct {
	Type      string              `json:"type"` // "message"
	Message   *models.MessageView `json:"message,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}

const EventTypeMessage = "message"

// ChatHub fans events out to the WebSocket connections on this instance.
type ChatHub struct {
	mu     sync.Mutex
	nextID int64
	subs   map[int64]chan ChatEvent
}

var (
	chatHub      = &ChatHub{subs: make(map[int64]chan ChatEvent)}
	redisStarted sync.Once
)

// SubscribeChat registers a local subscriber. The returned function must be
// called on disconnect to release the channel.
func SubscribeChat() (<-chan ChatEvent, func()) {
	chatHub.mu.Lock()
	defer chatHub.mu.Unlock()

	id := chatHub.nextID
	chatHub.nextID++

	// Buffered so one slow connection cannot stall the fan-out loop.
	ch := make(chan ChatEvent, 32)
	chatHub.subs[id] = ch

	unsubscribe := func() {
		chatHub.mu.Lock()
		defer chatHub.mu.Unlock()
		if sub, ok := chatHub.subs[id]; ok {
			delete(chatHub.subs, id)
			close(sub)
		}
	}
	return ch, unsubscribe
}

// fanOut delivers an event to all local subscribers, dropping it for any
// subscriber whose buffer is full.
func (h *ChatHub) fanOut(event ChatEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// SubscriberCount reports how many local connections are listening.
func (h *ChatHub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Hub exposes the process-wide chat hub.
func Hub() *ChatHub { return chatHub }

// PublishChatMessage announces a freshly persisted message to all
// instances via Redis. Best-effort: a publish failure only degrades live
// delivery, the message is already stored and reachable by cursor.
func PublishChatMessage(ctx context.Context, view *models.MessageView) error {
	event := ChatEvent{
		Type:      EventTypeMessage,
		Message:   view,
		Timestamp: time.Now().UTC(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return database.RedisClient.Publish(ctx, chatChannel, data).Err()
}

// StartRedisChatSubscriber ensures a single shared Redis listener per
// instance.
func StartRedisChatSubscriber(ctx context.Context) {
	redisStarted.Do(func() {
		go runRedisSubscriber(ctx)
	})
}

func runRedisSubscriber(ctx context.Context) {
	client := database.RedisClient
	if client == nil {
		log.Println("Redis client not initialized; chat subscriber not started")
		return
	}

	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		func() {
			pubsub := client.Subscribe(ctx, chatChannel)
			defer pubsub.Close()

			log.Printf("✅ Chat Redis subscriber started (channel: %s)", chatChannel)

			for {
				msg, err := pubsub.ReceiveMessage(ctx)
				if err != nil {
					log.Printf("Redis subscriber error: %v", err)
					time.Sleep(backoff)
					backoff *= 2
					if backoff > 30*time.Second {
						backoff = 30 * time.Second
					}
					return
				}

				backoff = time.Second

				var event ChatEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("failed to unmarshal chat event: %v", err)
					continue
				}

				chatHub.fanOut(event)
			}
		}()
	}
}
