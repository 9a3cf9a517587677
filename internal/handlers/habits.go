package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/habitsuz/habits-backend/internal/gamification"
	"github.com/habitsuz/habits-backend/internal/middleware"
	"github.com/habitsuz/habits-backend/internal/models"
	"github.com/habitsuz/habits-backend/internal/services"
)

// CreateHabitRequest is the new-habit payload.
type CreateHabitRequest struct {
	Title     string           `json:"title"`
	Category  models.Category  `json:"category"`
	Frequency models.Frequency `json:"frequency"`
}

// UpdateHabitRequest drives both modes of the habit PUT: a metadata merge
// (title/category/frequency) or, when toggleDate is present, a completion
// toggle that runs the gamification engine.
type UpdateHabitRequest struct {
	Title      *string           `json:"title,omitempty"`
	Category   *models.Category  `json:"category,omitempty"`
	Frequency  *models.Frequency `json:"frequency,omitempty"`
	ToggleDate *string           `json:"toggleDate,omitempty"`
}

// HabitToggleResponse returns both the toggled habit and the refreshed
// user, so the client replaces derived state instead of recomputing it.
type HabitToggleResponse struct {
	Habit *models.Habit `json:"habit"`
	User  *models.User  `json:"user"`
}

// CreateHabit creates a habit for the authenticated user and runs a badge
// pass (the first habit unlocks first_step).
func CreateHabit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	var req CreateHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeMessage(w, http.StatusBadRequest, "Title is required")
		return
	}
	if req.Category == "" {
		req.Category = models.CategoryPersonal
	}
	if req.Frequency == "" {
		req.Frequency = models.FrequencyDaily
	}

	habit := &models.Habit{
		UserID:         user.ID,
		Title:          req.Title,
		Category:       req.Category,
		Frequency:      req.Frequency,
		CompletedDates: []string{},
	}

	ctx, cancel := context5s(r)
	defer cancel()

	if err := services.CreateHabit(ctx, habit); err != nil {
		writeStoreError(w, "create habit", err)
		return
	}

	if err := runBadgePass(ctx, user); err != nil {
		writeStoreError(w, "badge pass", err)
		return
	}

	writeJSON(w, http.StatusCreated, habit)
}

// UpdateHabit merges habit metadata, or toggles a completion date through
// the engine when toggleDate is supplied. Owner-scoped either way.
func UpdateHabit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	habitID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Not found")
		return
	}

	var req UpdateHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.ToggleDate != nil {
		toggleHabit(w, r, user, habitID, *req.ToggleDate)
		return
	}

	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		if trimmed == "" {
			writeMessage(w, http.StatusBadRequest, "Title cannot be empty")
			return
		}
		req.Title = &trimmed
	}

	ctx, cancel := context5s(r)
	defer cancel()

	habit, err := services.UpdateHabitMeta(ctx, habitID, user.ID, services.HabitUpdate{
		Title:     req.Title,
		Category:  req.Category,
		Frequency: req.Frequency,
	})
	if err != nil {
		writeStoreError(w, "update habit", err)
		return
	}

	writeJSON(w, http.StatusOK, habit)
}

// toggleHabit is the one write path for completion state: streak evaluator,
// then the points ledger, then a badge pass, all persisted before the
// response.
func toggleHabit(w http.ResponseWriter, r *http.Request, user *models.User, habitID primitive.ObjectID, toggleDate string) {
	if _, err := time.Parse("2006-01-02", toggleDate); err != nil {
		writeMessage(w, http.StatusBadRequest, "toggleDate must be a YYYY-MM-DD date")
		return
	}

	ctx, cancel := context5s(r)
	defer cancel()

	habit, err := services.FindHabit(ctx, habitID, user.ID)
	if err != nil {
		writeStoreError(w, "find habit", err)
		return
	}

	var delta int
	habit.CompletedDates, habit.Streak, delta = gamification.ToggleCompletion(habit.CompletedDates, habit.Streak, toggleDate)

	if err := services.SaveHabitCompletion(ctx, habit); err != nil {
		writeStoreError(w, "save habit completion", err)
		return
	}

	user.Points, user.Level = gamification.ApplyDelta(user.Points, delta)

	if err := runBadgePass(ctx, user); err != nil {
		writeStoreError(w, "badge pass", err)
		return
	}

	services.InvalidateLeaderboard(ctx)

	writeJSON(w, http.StatusOK, HabitToggleResponse{Habit: habit, User: user})
}

// DeleteHabit hard-deletes an owned habit.
func DeleteHabit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	habitID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Not found")
		return
	}

	ctx, cancel := context5s(r)
	defer cancel()

	if err := services.DeleteHabit(ctx, habitID, user.ID); err != nil {
		writeStoreError(w, "delete habit", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// runBadgePass re-evaluates the badge table against the user's current
// habits and persists the user's gamification counters. Badge grants are
// monotonic, so evaluating after every point-affecting action is safe.
func runBadgePass(ctx context.Context, user *models.User) error {
	habits, err := services.ListHabits(ctx, user.ID)
	if err != nil {
		return err
	}
	user.Badges = gamification.EvaluateBadges(user, habits, nil)
	return services.SaveUserGamification(ctx, user)
}
