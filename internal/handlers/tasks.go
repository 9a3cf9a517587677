package handlers

import (
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

// CreateTaskRequest is the new-task payload.
type CreateTaskRequest struct {
	Title    string          `json:"title"`
	Priority models.Priority `json:"priority"`
	Category models.Category `json:"category"`
	DueDate  *time.Time      `json:"dueDate,omitempty"`
}

// UpdateTaskRequest merges editable fields. Flipping completed from false
// to true runs the points ledger; flipping it back does not refund.
type UpdateTaskRequest struct {
	Title     *string          `json:"title,omitempty"`
	Priority  *models.Priority `json:"priority,omitempty"`
	Category  *models.Category `json:"category,omitempty"`
	DueDate   *time.Time       `json:"dueDate,omitempty"`
	Completed *bool            `json:"completed,omitempty"`
}

// TaskUpdateResponse mirrors the habit toggle shape: the task plus the
// refreshed user whenever gamification state may have moved.
type TaskUpdateResponse struct {
	Task *models.Task `json:"task"`
	User *models.User `json:"user"`
}

// CreateTask creates a task for the authenticated user.
func CreateTask(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeMessage(w, http.StatusBadRequest, "Title is required")
		return
	}
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}
	if req.Category == "" {
		req.Category = models.CategoryPersonal
	}

	task := &models.Task{
		UserID:   user.ID,
		Title:    req.Title,
		Priority: req.Priority,
		Category: req.Category,
		DueDate:  req.DueDate,
	}

	ctx, cancel := context5s(r)
	defer cancel()

	if err := services.CreateTask(ctx, task); err != nil {
		writeStoreError(w, "create task", err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

// UpdateTask merges task fields and, when completion flips on, credits the
// user through the ledger and re-runs the badge pass.
func UpdateTask(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	taskID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Not found")
		return
	}

	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
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

	delta := 0
	if req.Completed != nil {
		current, err := services.FindTask(ctx, taskID, user.ID)
		if err != nil {
			writeStoreError(w, "find task", err)
			return
		}
		if !current.Completed && *req.Completed {
			_, delta = gamification.ToggleTask(current.Completed)
		}
	}

	task, err := services.SaveTask(ctx, taskID, user.ID, services.TaskUpdate{
		Title:     req.Title,
		Priority:  req.Priority,
		Category:  req.Category,
		DueDate:   req.DueDate,
		Completed: req.Completed,
	})
	if err != nil {
		writeStoreError(w, "update task", err)
		return
	}

	if delta != 0 {
		user.Points, user.Level = gamification.ApplyDelta(user.Points, delta)
		if err := runBadgePass(ctx, user); err != nil {
			writeStoreError(w, "badge pass", err)
			return
		}
		services.InvalidateLeaderboard(ctx)
	}

	writeJSON(w, http.StatusOK, TaskUpdateResponse{Task: task, User: user})
}

// DeleteTask hard-deletes an owned task.
func DeleteTask(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	taskID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Not found")
		return
	}

	ctx, cancel := context5s(r)
	defer cancel()

	if err := services.DeleteTask(ctx, taskID, user.ID); err != nil {
		writeStoreError(w, "delete task", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
