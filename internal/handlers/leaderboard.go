package handlers

import (
	"net/http"

	"github.com/habitsuz/habits-backend/internal/services"
)

// GetLeaderboard returns the top users by points. Public, cache-backed.
func GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context5s(r)
	defer cancel()

	entries, err := services.Leaderboard(ctx)
	if err != nil {
		writeStoreError(w, "leaderboard", err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}
