package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/habitsuz/habits-backend/internal/database"
	"github.com/habitsuz/habits-backend/internal/models"
)

// ErrNotFound is returned for lookups and mutations that matched nothing;
// including entities that exist but belong to someone else. Non-owners must
// never learn the difference.
var ErrNotFound = errors.New("not found")

const (
	usersCollection    = "users"
	habitsCollection   = "habits"
	tasksCollection    = "tasks"
	messagesCollection = "messages"
)

// EnsureIndexes configures the indexes every query path relies on. Called
// on startup from main after Mongo has connected.
func EnsureIndexes(ctx context.Context) error {
	users := database.DB.Collection(usersCollection)
	if _, err := users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_email_unique").SetUnique(true),
		},
		{
			// Leaderboard scans top points directly off this index.
			Keys:    bson.D{{Key: "points", Value: -1}},
			Options: options.Index().SetName("idx_points"),
		},
	}); err != nil {
		return err
	}

	for _, col := range []string{habitsCollection, tasksCollection} {
		if _, err := database.DB.Collection(col).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_user"),
		}); err != nil {
			return err
		}
	}

	_, err := database.DB.Collection(messagesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "created_at", Value: -1}},
		Options: options.Index().SetName("idx_created_at"),
	})
	return err
}

// --- Users ---

// CreateUser inserts a new user. Fails when the email is already taken
// (enforced both by pre-check in the handler and the unique index).
func CreateUser(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Badges == nil {
		user.Badges = []string{}
	}

	_, err := database.DB.Collection(usersCollection).InsertOne(ctx, user)
	return err
}

func FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := database.DB.Collection(usersCollection).FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := database.DB.Collection(usersCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ProfileUpdate is the whitelist of profile fields a user may change.
// Points, level, badges, and streaks are engine-owned and deliberately
// absent. Nil fields are left untouched (partial merge).
type ProfileUpdate struct {
	Username          *string
	Bio               *string
	JobTitle          *string
	AvatarURL         *string
	HasSeenOnboarding *bool
}

// UpdateUserProfile merges the supplied fields into the user document and
// returns the updated user. HasSeenOnboarding is one-way: once true it is
// never reset.
func UpdateUserProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) (*models.User, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Username != nil {
		set["username"] = *upd.Username
	}
	if upd.Bio != nil {
		set["bio"] = *upd.Bio
	}
	if upd.JobTitle != nil {
		set["job_title"] = *upd.JobTitle
	}
	if upd.AvatarURL != nil {
		set["avatar_url"] = *upd.AvatarURL
	}
	if upd.HasSeenOnboarding != nil && *upd.HasSeenOnboarding {
		set["has_seen_onboarding"] = true
	}

	after := options.After
	var user models.User
	err := database.DB.Collection(usersCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(after),
	).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SaveUserGamification persists engine output (points, level, badges) for a
// user. Last write wins; there is no optimistic concurrency here.
func SaveUserGamification(ctx context.Context, user *models.User) error {
	_, err := database.DB.Collection(usersCollection).UpdateOne(
		ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{
			"points":     user.Points,
			"level":      user.Level,
			"badges":     user.Badges,
			"updated_at": time.Now().UTC(),
		}},
	)
	return err
}

// TopUsersByPoints returns the highest-scoring users for the leaderboard.
func TopUsersByPoints(ctx context.Context, limit int64) ([]models.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "points", Value: -1}}).
		SetLimit(limit)

	cur, err := database.DB.Collection(usersCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// --- Habits ---

func ListHabits(ctx context.Context, owner primitive.ObjectID) ([]models.Habit, error) {
	cur, err := database.DB.Collection(habitsCollection).Find(ctx, bson.M{"user_id": owner})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	habits := []models.Habit{}
	if err := cur.All(ctx, &habits); err != nil {
		return nil, err
	}
	return habits, nil
}

func CreateHabit(ctx context.Context, habit *models.Habit) error {
	habit.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	habit.CreatedAt = now
	habit.UpdatedAt = now
	if habit.CompletedDates == nil {
		habit.CompletedDates = []string{}
	}

	_, err := database.DB.Collection(habitsCollection).InsertOne(ctx, habit)
	return err
}

// FindHabit loads a habit scoped to its owner. A habit owned by someone
// else comes back as ErrNotFound.
func FindHabit(ctx context.Context, id, owner primitive.ObjectID) (*models.Habit, error) {
	var habit models.Habit
	err := database.DB.Collection(habitsCollection).
		FindOne(ctx, bson.M{"_id": id, "user_id": owner}).
		Decode(&habit)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &habit, nil
}

// HabitUpdate carries the editable habit metadata. Completion state is not
// editable directly; it moves only through toggles.
type HabitUpdate struct {
	Title     *string
	Category  *models.Category
	Frequency *models.Frequency
}

func UpdateHabitMeta(ctx context.Context, id, owner primitive.ObjectID, upd HabitUpdate) (*models.Habit, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Category != nil {
		set["category"] = *upd.Category
	}
	if upd.Frequency != nil {
		set["frequency"] = *upd.Frequency
	}

	after := options.After
	var habit models.Habit
	err := database.DB.Collection(habitsCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": id, "user_id": owner},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(after),
	).Decode(&habit)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &habit, nil
}

// SaveHabitCompletion persists engine output for a toggled habit.
func SaveHabitCompletion(ctx context.Context, habit *models.Habit) error {
	res, err := database.DB.Collection(habitsCollection).UpdateOne(
		ctx,
		bson.M{"_id": habit.ID, "user_id": habit.UserID},
		bson.M{"$set": bson.M{
			"completed_dates": habit.CompletedDates,
			"streak":          habit.Streak,
			"updated_at":      time.Now().UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteHabit hard-deletes a habit. Owner-scoped: deleting someone else's
// habit deletes nothing and reports not found.
func DeleteHabit(ctx context.Context, id, owner primitive.ObjectID) error {
	res, err := database.DB.Collection(habitsCollection).DeleteOne(ctx, bson.M{"_id": id, "user_id": owner})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Tasks ---

// ListTasks returns the owner's tasks newest-first.
func ListTasks(ctx context.Context, owner primitive.ObjectID) ([]models.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := database.DB.Collection(tasksCollection).Find(ctx, bson.M{"user_id": owner}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	tasks := []models.Task{}
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func CreateTask(ctx context.Context, task *models.Task) error {
	task.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	_, err := database.DB.Collection(tasksCollection).InsertOne(ctx, task)
	return err
}

func FindTask(ctx context.Context, id, owner primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	err := database.DB.Collection(tasksCollection).
		FindOne(ctx, bson.M{"_id": id, "user_id": owner}).
		Decode(&task)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// TaskUpdate carries editable task fields. Completed is handled by the
// toggle path in the handler so the ledger sees the transition.
type TaskUpdate struct {
	Title     *string
	Priority  *models.Priority
	Category  *models.Category
	DueDate   *time.Time
	Completed *bool
}

func SaveTask(ctx context.Context, id, owner primitive.ObjectID, upd TaskUpdate) (*models.Task, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Priority != nil {
		set["priority"] = *upd.Priority
	}
	if upd.Category != nil {
		set["category"] = *upd.Category
	}
	if upd.DueDate != nil {
		set["due_date"] = *upd.DueDate
	}
	if upd.Completed != nil {
		set["completed"] = *upd.Completed
	}

	after := options.After
	var task models.Task
	err := database.DB.Collection(tasksCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": id, "user_id": owner},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(after),
	).Decode(&task)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func DeleteTask(ctx context.Context, id, owner primitive.ObjectID) error {
	res, err := database.DB.Collection(tasksCollection).DeleteOne(ctx, bson.M{"_id": id, "user_id": owner})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
