package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mysteryvault/storefront/internal/domain"
	"github.com/mysteryvault/storefront/internal/service"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type updateProfileRequestDTO struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	PhoneNo         string `json:"phoneNo"`
	Photo           string `json:"photo"`
	Password        string `json:"password"`
	CurrentPassword string `json:"currentPassword"`
}

type changePasswordRequestDTO struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type deleteAccountRequestDTO struct {
	Password string `json:"password"`
}

type saveAddressRequestDTO struct {
	Address  string `json:"address"`
	Pincode  string `json:"pincode"`
	City     string `json:"city"`
	State    string `json:"state"`
	Landmark string `json:"landmark"`
}

type addressResponse struct {
	Success bool            `json:"success,omitempty"`
	Address *domain.Address `json:"address"`
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	callerID := userIDFromContext(r.Context())
	targetID := chi.URLParam(r, "id")

	var req updateProfileRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), callerID, targetID, service.UpdateProfileInput{
		Name:            req.Name,
		Email:           req.Email,
		PhoneNo:         req.PhoneNo,
		Photo:           req.Photo,
		Password:        req.Password,
		CurrentPassword: req.CurrentPassword,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, userResponse{Success: true, User: user})
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	callerID := userIDFromContext(r.Context())
	targetID := chi.URLParam(r, "id")

	var req changePasswordRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.users.ChangePassword(r.Context(), callerID, targetID, req.CurrentPassword, req.NewPassword); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	callerID := userIDFromContext(r.Context())
	targetID := chi.URLParam(r, "id")

	var req deleteAccountRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.users.DeleteAccount(r.Context(), callerID, targetID, req.Password); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *UserHandler) GetAddress(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	address, err := h.users.GetAddress(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, addressResponse{Address: address})
}

func (h *UserHandler) SaveAddress(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	var req saveAddressRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	address, err := h.users.SaveAddress(r.Context(), userID, service.SaveAddressInput{
		Address:  req.Address,
		Pincode:  req.Pincode,
		City:     req.City,
		State:    req.State,
		Landmark: req.Landmark,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, addressResponse{Success: true, Address: address})
}
