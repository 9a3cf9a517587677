package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/habitsuz/habits-backend/internal/models"
	"github.com/habitsuz/habits-backend/internal/services"
	"github.com/habitsuz/habits-backend/pkg/utils"
)

// RegisterRequest is the signup payload.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the signin payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries a fresh token plus the user it belongs to.
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register handles user registration.
func Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Username, email, and password are required")
		return
	}
	if err := utils.ValidateUsername(req.Username); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.ValidateEmail(req.Email); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	email := utils.NormalizeEmail(req.Email)

	ctx, cancel := context5s(r)
	defer cancel()

	if _, err := services.FindUserByEmail(ctx, email); err == nil {
		writeMessage(w, http.StatusBadRequest, "This email is already registered")
		return
	} else if !errors.Is(err, services.ErrNotFound) {
		writeStoreError(w, "register lookup", err)
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		log.Printf("ERROR: hash password: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	user := &models.User{
		Username: req.Username,
		Email:    email,
		Password: hashedPassword,
		Points:   0,
		Level:    1,
		Badges:   []string{},
	}

	if err := services.CreateUser(ctx, user); err != nil {
		// The unique index closes the race between lookup and insert.
		if mongo.IsDuplicateKeyError(err) {
			writeMessage(w, http.StatusBadRequest, "This email is already registered")
			return
		}
		writeStoreError(w, "create user", err)
		return
	}

	token, err := services.IssueToken(user.ID.Hex())
	if err != nil {
		log.Printf("ERROR: issue token: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{Token: token, User: user})
}

// Login handles user sign-in. Unknown email answers 404, wrong password
// 400, both with the same message so neither confirms an account exists.
func Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	ctx, cancel := context5s(r)
	defer cancel()

	user, err := services.FindUserByEmail(ctx, utils.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Invalid email or password")
			return
		}
		writeStoreError(w, "login lookup", err)
		return
	}

	if !utils.VerifyPassword(req.Password, user.Password) {
		writeMessage(w, http.StatusBadRequest, "Invalid email or password")
		return
	}

	token, err := services.IssueToken(user.ID.Hex())
	if err != nil {
		log.Printf("ERROR: issue token: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{Token: token, User: user})
}
