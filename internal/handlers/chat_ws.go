package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/habitsuz/habits-backend/internal/middleware"
	"github.com/habitsuz/habits-backend/internal/models"
	"github.com/habitsuz/habits-backend/internal/services"
)

var chatUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS for WebSocket is handled at the HTTP layer already.
		return true
	},
}

// ChatClientMessage represents frames coming from the frontend over the
// WebSocket. Only "message" and "ping" are meaningful; unknown types are
// ignored.
type ChatClientMessage struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// ChatWebSocket upgrades the connection and streams community chat events.
// Authentication uses the normal bearer token, with a `token` query
// parameter fallback for browser WebSocket clients. An optional
// `since=<messageID>` parameter replays messages the client missed before
// live events start flowing.
func ChatWebSocket(w http.ResponseWriter, r *http.Request) {
	token := middleware.ExtractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		token = r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
	}

	userID, err := services.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	authCtx, authCancel := context.WithTimeout(r.Context(), 5*time.Second)
	user, err := services.FindUserByID(authCtx, oid)
	authCancel()
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	var sinceID *primitive.ObjectID
	if raw := r.URL.Query().Get("since"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			http.Error(w, "since must be a message id", http.StatusBadRequest)
			return
		}
		sinceID = &id
	}

	conn, err := chatUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	// Subscribe before the replay so no event published during it is lost;
	// live events buffer in the hub channel until the forwarder starts.
	events, unsubscribe := services.SubscribeChat()
	defer unsubscribe()

	// The connection gets exactly one writer goroutine. Gorilla connections
	// do not support concurrent writes, so every outbound frame (replay,
	// live events, acks, errors) funnels through this channel.
	outgoing := make(chan interface{}, 64)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for frame := range outgoing {
			if err := conn.WriteJSON(frame); err != nil {
				return
			}
		}
	}()

	send := func(frame interface{}) {
		select {
		case outgoing <- frame:
		case <-writerDone:
		}
	}

	// Replay missed messages first so the client sees a contiguous stream:
	// everything after its cursor, then live events.
	if sinceID != nil {
		replayCtx, replayCancel := context.WithTimeout(context.Background(), 5*time.Second)
		missed, err := services.ListMessagesSince(replayCtx, *sinceID, services.MaxChatLimit)
		replayCancel()
		if err == nil {
			for i := range missed {
				send(services.ChatEvent{
					Type:      services.EventTypeMessage,
					Message:   &missed[i],
					Timestamp: missed[i].CreatedAt,
				})
			}
		}
	}

	// Forward hub events into the writer. This goroutine owns closing
	// `outgoing`: it stops only after unsubscribe closes `events`, which
	// happens after the read loop (the one other sender) has returned.
	go func() {
		defer close(outgoing)
		for evt := range events {
			select {
			case outgoing <- evt:
			case <-writerDone:
			}
		}
	}()

	conn.SetReadLimit(4 * 1024)
	_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))

		var msg ChatClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "message":
			handleIncomingChatMessage(context.Background(), send, user, msg.Text)
		case "ping":
			send(map[string]string{"type": "pong"})
		default:
			// Ignore unknown types.
		}
	}
}

// handleIncomingChatMessage validates, persists, and publishes a message
// received over the socket. The sender gets the event back through its own
// subscription like everyone else; only validation and persistence failures
// go out directly.
func handleIncomingChatMessage(ctx context.Context, send func(interface{}), user *models.User, text string) {
	text = strings.TrimSpace(text)
	if text == "" || chatTextTooLong(text) {
		send(map[string]string{
			"type":  "error",
			"error": "message must be 1-500 characters",
		})
		return
	}

	saveCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	view, err := services.SaveMessage(saveCtx, user, text)
	if err != nil {
		send(map[string]string{
			"type":  "error",
			"error": "failed to persist message",
		})
		return
	}

	services.PublishChatMessage(saveCtx, view)
}
