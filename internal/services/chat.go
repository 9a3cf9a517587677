package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/habitsuz/habits-backend/internal/database"
	"github.com/habitsuz/habits-backend/internal/models"
)

// DefaultChatLimit bounds how much history a single request can pull.
const (
	DefaultChatLimit = 50
	MaxChatLimit     = 100
)

// SaveMessage persists a chat message and returns it joined with the
// author's public identity.
func SaveMessage(ctx context.Context, author *models.User, text string) (*models.MessageView, error) {
	msg := models.Message{
		ID:        primitive.NewObjectID(),
		UserID:    author.ID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := database.DB.Collection(messagesCollection).InsertOne(ctx, msg); err != nil {
		return nil, err
	}

	return &models.MessageView{
		ID:         msg.ID.Hex(),
		Text:       msg.Text,
		UserID:     author.ID.Hex(),
		Username:   author.Username,
		UserAvatar: author.AvatarURL,
		UserLevel:  author.Level,
		CreatedAt:  msg.CreatedAt,
	}, nil
}

// ListMessages returns the last `limit` messages in chronological order,
// each joined with its author. Messages whose author no longer exists keep
// the fallback identity so the log never loses entries.
func ListMessages(ctx context.Context, limit int64) ([]models.MessageView, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(clampChatLimit(limit))

	msgs, err := findMessages(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}

	// Reverse to oldest-first for the UI.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	return joinAuthors(ctx, msgs)
}

// ListMessagesSince returns messages created after the given message id,
// oldest first. This is the cursor contract behind both polling and the
// WebSocket replay: the transport is an implementation detail on top of it.
func ListMessagesSince(ctx context.Context, sinceID primitive.ObjectID, limit int64) ([]models.MessageView, error) {
	// ObjectIDs embed their creation time, so _id order is creation order.
	// Sorting ascending keeps a capped page contiguous with the cursor:
	// the oldest backlog goes out first and nothing between the cursor and
	// the end of the page is skipped.
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetLimit(clampChatLimit(limit))

	msgs, err := findMessages(ctx, bson.M{"_id": bson.M{"$gt": sinceID}}, opts)
	if err != nil {
		return nil, err
	}

	return joinAuthors(ctx, msgs)
}

func clampChatLimit(limit int64) int64 {
	if limit <= 0 || limit > MaxChatLimit {
		return DefaultChatLimit
	}
	return limit
}

func findMessages(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Message, error) {
	cur, err := database.DB.Collection(messagesCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var msgs []models.Message
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// joinAuthors resolves each message's author to its public identity,
// keeping message order.
func joinAuthors(ctx context.Context, msgs []models.Message) ([]models.MessageView, error) {
	authors, err := loadAuthors(ctx, msgs)
	if err != nil {
		return nil, err
	}

	views := make([]models.MessageView, 0, len(msgs))
	for _, m := range msgs {
		view := models.MessageView{
			ID:        m.ID.Hex(),
			Text:      m.Text,
			CreatedAt: m.CreatedAt,
		}
		if author, ok := authors[m.UserID]; ok {
			view.UserID = author.ID.Hex()
			view.Username = author.Username
			view.UserAvatar = author.AvatarURL
			view.UserLevel = author.Level
		} else {
			view.UserID = models.DeletedUserID
			view.Username = models.DeletedUserName
			view.UserLevel = 0
		}
		views = append(views, view)
	}
	return views, nil
}

// loadAuthors batch-fetches the distinct authors of a message page.
func loadAuthors(ctx context.Context, msgs []models.Message) (map[primitive.ObjectID]*models.User, error) {
	ids := make([]primitive.ObjectID, 0, len(msgs))
	seen := make(map[primitive.ObjectID]bool, len(msgs))
	for _, m := range msgs {
		if !seen[m.UserID] {
			seen[m.UserID] = true
			ids = append(ids, m.UserID)
		}
	}

	authors := make(map[primitive.ObjectID]*models.User, len(ids))
	if len(ids) == 0 {
		return authors, nil
	}

	cur, err := database.DB.Collection(usersCollection).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			continue
		}
		user := u
		authors[u.ID] = &user
	}
	return authors, cur.Err()
}
