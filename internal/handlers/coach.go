package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/habitsuz/habits-backend/internal/config"
	"github.com/habitsuz/habits-backend/internal/middleware"
	"github.com/habitsuz/habits-backend/internal/models"
	"github.com/habitsuz/habits-backend/internal/services"
)

var coachService *services.CoachService

// InitCoachService wires the AI coach from config. Safe to call with an
// empty API key; every endpoint then serves its static fallback.
func InitCoachService(cfg *config.Config) {
	coachService = services.NewCoachService(cfg.GeminiAPIKey, cfg.GeminiAPIURL, cfg.GeminiModel)
}

// QuoteRequest optionally carries user context to personalize the quote.
type QuoteRequest struct {
	Context string `json:"context,omitempty"`
}

// QuoteResponse is a single motivational line.
type QuoteResponse struct {
	Quote string `json:"quote"`
}

// PlanRequest asks the coach to break a goal into habits.
type PlanRequest struct {
	Goal string `json:"goal"`
}

// PlanResponse is the suggested habit list. Empty when generation failed,
// so the client can fall back to its own defaults.
type PlanResponse struct {
	Habits []services.HabitSuggestion `json:"habits"`
}

// CoachChatRequest is a conversational turn with optional prior history.
type CoachChatRequest struct {
	Message string   `json:"message"`
	History []string `json:"history,omitempty"`
}

// CoachChatResponse is the coach's reply.
type CoachChatResponse struct {
	Reply string `json:"reply"`
}

// GetQuote returns a motivational quote, personalized with the user's
// current stats when available.
func GetQuote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	// Body is optional here; a missing or malformed one just means no
	// extra context.
	_ = json.NewDecoder(r.Body).Decode(&req)

	userContext := strings.TrimSpace(req.Context)
	if userContext == "" {
		if user, ok := middleware.UserFromContext(r.Context()); ok {
			userContext = coachContext(user)
		}
	}

	writeJSON(w, http.StatusOK, QuoteResponse{
		Quote: coachService.MotivationalQuote(r.Context(), userContext),
	})
}

// GetPlan turns a free-form goal into concrete habit suggestions.
func GetPlan(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Goal = strings.TrimSpace(req.Goal)
	if req.Goal == "" {
		writeMessage(w, http.StatusBadRequest, "Goal is required")
		return
	}

	habits := coachService.HabitPlan(r.Context(), req.Goal)
	if habits == nil {
		habits = []services.HabitSuggestion{}
	}

	writeJSON(w, http.StatusOK, PlanResponse{Habits: habits})
}

// CoachChat answers a conversational message from the user.
func CoachChat(w http.ResponseWriter, r *http.Request) {
	var req CoachChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeMessage(w, http.StatusBadRequest, "Message is required")
		return
	}

	writeJSON(w, http.StatusOK, CoachChatResponse{
		Reply: coachService.Chat(r.Context(), req.Message, req.History),
	})
}

// coachContext summarizes the user's standing for prompt personalization.
func coachContext(user *models.User) string {
	return fmt.Sprintf("The user is %s, level %d with %d points and a %d-day streak.",
		user.Username, user.Level, user.Points, user.Streak)
}
