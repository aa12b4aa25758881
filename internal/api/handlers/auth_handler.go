package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Adithyan773/kisan-mitra/internal/core"
	"github.com/Adithyan773/kisan-mitra/internal/models"
	"github.com/Adithyan773/kisan-mitra/internal/services"
)

type AuthHandler struct {
	users     *services.UserService
	jwtSecret string
}

func NewAuthHandler(users *services.UserService, jwtSecret string) *AuthHandler {
	return &AuthHandler{users: users, jwtSecret: jwtSecret}
}

type registerRequest struct {
	Name     string `json:"name"`
	State    string `json:"state"`
	District string `json:"district"`
	City     string `json:"city"`
	Password string `json:"password"`
}

type loginResponse struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	State    string `json:"state"`
	District string `json:"district"`
	City     string `json:"city"`
	Token    string `json:"token"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	user := &models.User{
		Name:     req.Name,
		State:    req.State,
		District: req.District,
		City:     req.City,
	}
	if err := h.users.Register(r.Context(), user, req.Password); err != nil {
		if errors.Is(err, core.ErrDuplicateUser) {
			writeJSON(w, http.StatusConflict, map[string]string{
				"error": "Username already exists. Please choose a different name.",
			})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user payload"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

// Login accepts form-encoded credentials and returns the user profile
// with a bearer token. Bad name and bad password produce the same
// answer on purpose.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form"})
		return
	}

	user, err := h.users.Authenticate(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		if errors.Is(err, core.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Incorrect username or password"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "An internal server error occurred."})
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		ID:       user.ID,
		Name:     user.Name,
		State:    user.State,
		District: user.District,
		City:     user.City,
		Token:    h.generateJWT(user),
	})
}

// generateJWT creates a signed token carrying the user identity.
func (h *AuthHandler) generateJWT(user *models.User) string {
	claims := jwt.MapClaims{
		"user_id": strconv.Itoa(user.ID),
		"name":    user.Name,
		"jti":     uuid.NewString(),
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, _ := tok.SignedString([]byte(h.jwtSecret))
	return token
}
