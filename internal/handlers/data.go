package handlers

import (
	"net/http"

	"github.com/habitsuz/habits-backend/internal/middleware"
	"github.com/habitsuz/habits-backend/internal/models"
	"github.com/habitsuz/habits-backend/internal/services"
)

// DataResponse is the dashboard bootstrap payload: the user plus everything
// they own.
type DataResponse struct {
	User   *models.User   `json:"user"`
	Habits []models.Habit `json:"habits"`
	Tasks  []models.Task  `json:"tasks"`
}

// GetData returns the authenticated user's full state in one request.
func GetData(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	ctx, cancel := context5s(r)
	defer cancel()

	habits, err := services.ListHabits(ctx, user.ID)
	if err != nil {
		writeStoreError(w, "list habits", err)
		return
	}

	tasks, err := services.ListTasks(ctx, user.ID)
	if err != nil {
		writeStoreError(w, "list tasks", err)
		return
	}

	writeJSON(w, http.StatusOK, DataResponse{User: user, Habits: habits, Tasks: tasks})
}
