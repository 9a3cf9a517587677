package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/habitsuz/habits-backend/internal/config"
	"github.com/habitsuz/habits-backend/internal/middleware"
	"github.com/habitsuz/habits-backend/internal/services"
	"github.com/habitsuz/habits-backend/pkg/utils"
)

// ProfileUpdateRequest is a partial profile update: only supplied fields
// are written. Points, level, and badges are never accepted here; they
// belong to the engine.
type ProfileUpdateRequest struct {
	Username          *string `json:"username,omitempty"`
	Bio               *string `json:"bio,omitempty"`
	JobTitle          *string `json:"jobTitle,omitempty"`
	AvatarURL         *string `json:"avatarUrl,omitempty"`
	HasSeenOnboarding *bool   `json:"hasSeenOnboarding,omitempty"`
}

// UpdateProfile merges profile fields into the authenticated user.
func UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	var req ProfileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Username != nil {
		trimmed := strings.TrimSpace(*req.Username)
		if err := utils.ValidateUsername(trimmed); err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		req.Username = &trimmed
	}

	ctx, cancel := context5s(r)
	defer cancel()

	updated, err := services.UpdateUserProfile(ctx, user.ID, services.ProfileUpdate{
		Username:          req.Username,
		Bio:               req.Bio,
		JobTitle:          req.JobTitle,
		AvatarURL:         req.AvatarURL,
		HasSeenOnboarding: req.HasSeenOnboarding,
	})
	if err != nil {
		writeStoreError(w, "update profile", err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

var cloudinaryService *services.CloudinaryService

// InitCloudinaryService wires the avatar upload backend. Optional; without
// it UploadAvatar answers 503.
func InitCloudinaryService(cfg *config.Config) error {
	svc, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return err
	}
	cloudinaryService = svc
	return nil
}

// UploadAvatar accepts a multipart image and returns its hosted URL. The
// client follows up with a profile update carrying the new avatarUrl.
func UploadAvatar(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserFromContext(r.Context()); !ok {
		writeMessage(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	if cloudinaryService == nil {
		writeMessage(w, http.StatusServiceUnavailable, "File uploads are not available")
		return
	}

	// 5MB is plenty for an avatar
	if err := r.ParseMultipartForm(5 << 20); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, _, err := r.FormFile("avatar")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "avatar file is required")
		return
	}
	defer file.Close()

	url, err := cloudinaryService.UploadAvatar(r.Context(), file)
	if err != nil {
		log.Printf("ERROR: avatar upload: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Failed to upload avatar")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
