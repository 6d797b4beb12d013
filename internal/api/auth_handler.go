package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mysteryvault/storefront/internal/domain"
	"github.com/mysteryvault/storefront/internal/service"
	"github.com/mysteryvault/storefront/internal/token"
)

// sessionDuration is how long the auth cookie and its token stay valid.
const sessionDuration = 7 * 24 * time.Hour

type AuthHandler struct {
	users        *service.UserService
	maker        *token.JWTMaker
	secureCookie bool
}

func NewAuthHandler(users *service.UserService, maker *token.JWTMaker, secureCookie bool) *AuthHandler {
	return &AuthHandler{users: users, maker: maker, secureCookie: secureCookie}
}

type signUpRequestDTO struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	PhoneNo  string `json:"phoneNo"`
	Password string `json:"password"`
	Photo    string `json:"photo"`
}

type signInRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	Success bool         `json:"success,omitempty"`
	User    *domain.User `json:"user"`
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	user, err := h.users.SignUp(r.Context(), service.SignUpInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.PhoneNo,
		Password: req.Password,
		Photo:    req.Photo,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, userResponse{Success: true, User: user})
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	user, err := h.users.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	signed, err := h.maker.Create(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	h.setSessionCookie(w, signed, sessionDuration)
	respondJSON(w, http.StatusOK, userResponse{Success: true, User: user})
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.setSessionCookie(w, "", -time.Hour)
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Me resolves the authenticated user from the session cookie.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, userResponse{User: user})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, value string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
