package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/habitsuz/habits-backend/internal/handlers"
	"github.com/habitsuz/habits-backend/internal/middleware"
)

func SetupRoutes(r *chi.Mux) {
	// Public routes
	r.Post("/api/auth/register", handlers.Register)
	r.Post("/api/auth/login", handlers.Login)
	r.Get("/api/leaderboard", handlers.GetLeaderboard)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		// Dashboard bootstrap
		r.Get("/api/data", handlers.GetData)

		// Profile routes
		r.Put("/api/users/profile", handlers.UpdateProfile)
		r.Post("/api/upload", handlers.UploadAvatar)

		// Habit routes
		r.Post("/api/habits", handlers.CreateHabit)
		r.Put("/api/habits/{id}", handlers.UpdateHabit)
		r.Delete("/api/habits/{id}", handlers.DeleteHabit)

		// Task routes
		r.Post("/api/tasks", handlers.CreateTask)
		r.Put("/api/tasks/{id}", handlers.UpdateTask)
		r.Delete("/api/tasks/{id}", handlers.DeleteTask)

		// Community chat (MongoDB history + Redis Pub/Sub)
		r.Get("/api/chat", handlers.GetMessages)
		r.Post("/api/chat", handlers.SendMessage)

		// AI coach routes
		r.Post("/api/ai/quote", handlers.GetQuote)
		r.Post("/api/ai/plan", handlers.GetPlan)
		r.Post("/api/ai/chat", handlers.CoachChat)
	})

	// WebSocket endpoint for realtime community chat
	r.Get("/ws/chat", handlers.ChatWebSocket)
}
