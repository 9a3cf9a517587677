package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/habitsuz/habits-backend/internal/middleware"
	"github.com/habitsuz/habits-backend/internal/models"
	"github.com/habitsuz/habits-backend/internal/services"
)

// SendMessageRequest is the chat post payload.
type SendMessageRequest struct {
	Text string `json:"text"`
}

// chatTextTooLong counts characters, not bytes, so multibyte scripts get
// the full length allowance.
func chatTextTooLong(text string) bool {
	return utf8.RuneCountInString(text) > models.MaxMessageLength
}

// GetMessages returns community messages oldest-first. Supports ?limit and
// an optional ?since=<messageID> cursor for polling clients, which returns
// only messages newer than the cursor.
func GetMessages(w http.ResponseWriter, r *http.Request) {
	limit := int64(services.DefaultChatLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			writeMessage(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if n > services.MaxChatLimit {
			n = services.MaxChatLimit
		}
		limit = n
	}

	ctx, cancel := context5s(r)
	defer cancel()

	if raw := r.URL.Query().Get("since"); raw != "" {
		sinceID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "since must be a message id")
			return
		}
		messages, err := services.ListMessagesSince(ctx, sinceID, limit)
		if err != nil {
			writeStoreError(w, "list messages since", err)
			return
		}
		writeJSON(w, http.StatusOK, messages)
		return
	}

	messages, err := services.ListMessages(ctx, limit)
	if err != nil {
		writeStoreError(w, "list messages", err)
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

// SendMessage persists a chat message and fans it out to live subscribers.
func SendMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		writeMessage(w, http.StatusBadRequest, "Message text is required")
		return
	}
	if chatTextTooLong(req.Text) {
		writeMessage(w, http.StatusBadRequest,
			fmt.Sprintf("Message must be at most %d characters", models.MaxMessageLength))
		return
	}

	ctx, cancel := context5s(r)
	defer cancel()

	view, err := services.SaveMessage(ctx, user, req.Text)
	if err != nil {
		writeStoreError(w, "save message", err)
		return
	}

	services.PublishChatMessage(ctx, view)

	writeJSON(w, http.StatusCreated, view)
}
