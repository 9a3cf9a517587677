package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/habitsuz/habits-backend/internal/services"
)

// context5s derives the per-request storage deadline used by every handler.
func context5s(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), 5*time.Second)
}

// writeJSON writes v as the JSON response body.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeMessage writes the flat {"message": ...} error shape the frontend
// expects.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeStoreError maps a storage failure onto the response taxonomy:
// not-found (which covers ownership misses) stays not-found, everything
// else becomes a generic 500. The underlying error is logged server-side
// only, never sent to the client.
func writeStoreError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, services.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "Not found")
		return
	}
	log.Printf("ERROR: %s: %v", op, err)
	writeMessage(w, http.StatusInternalServerError, "Something went wrong")
}
