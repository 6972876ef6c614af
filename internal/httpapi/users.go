package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"skycast/internal/models"
	"skycast/internal/store"
)

type createUserRequest struct {
	Username string `json:"username" validate:"required,min=1,max=64"`
}

type saveLocationRequest struct {
	Name      string  `json:"name" validate:"required,min=1,max=128"`
	Lat       float64 `json:"lat" validate:"min=-90,max=90"`
	Lon       float64 `json:"lon" validate:"min=-180,max=180"`
	IsDefault bool    `json:"isDefault"`
}

// CreateUser handles POST /api/users.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Username is required")
		return
	}

	user, err := h.users.Create(r.Context(), req.Username)
	if err != nil {
		h.logError(r, "create user failed", err)
		writeMessage(w, http.StatusInternalServerError, "Failed to create user")
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// GetUser handles GET /api/users/{id}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "User not found")
			return
		}
		h.logError(r, "get user failed", err)
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// AddLocation handles POST /api/users/{id}/locations.
func (h *Handler) AddLocation(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]

	var req saveLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Location name and valid coordinates are required")
		return
	}

	if _, err := h.users.GetByID(r.Context(), userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "User not found")
			return
		}
		h.logError(r, "add location failed", err)
		writeMessage(w, http.StatusInternalServerError, "Failed to save location")
		return
	}

	loc, err := h.locations.Add(r.Context(), models.SavedLocation{
		UserID:    userID,
		Name:      req.Name,
		Lat:       req.Lat,
		Lon:       req.Lon,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		h.logError(r, "add location failed", err)
		writeMessage(w, http.StatusInternalServerError, "Failed to save location")
		return
	}
	writeJSON(w, http.StatusCreated, loc)
}

// ListLocations handles GET /api/users/{id}/locations.
func (h *Handler) ListLocations(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]

	if _, err := h.users.GetByID(r.Context(), userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "User not found")
			return
		}
		h.logError(r, "list locations failed", err)
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch locations")
		return
	}

	locs, err := h.locations.ListByUser(r.Context(), userID)
	if err != nil {
		h.logError(r, "list locations failed", err)
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch locations")
		return
	}
	if locs == nil {
		locs = []models.SavedLocation{}
	}
	writeJSON(w, http.StatusOK, locs)
}

// UpdateLocation handles PUT /api/users/{id}/locations/{locationId}.
func (h *Handler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, locID := vars["id"], vars["locationId"]

	var req saveLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Location name and valid coordinates are required")
		return
	}

	loc, err := h.locations.Update(r.Context(), models.SavedLocation{
		ID:        locID,
		UserID:    userID,
		Name:      req.Name,
		Lat:       req.Lat,
		Lon:       req.Lon,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Location not found")
			return
		}
		h.logError(r, "update location failed", err)
		writeMessage(w, http.StatusInternalServerError, "Failed to update location")
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

// DeleteLocation handles DELETE /api/users/{id}/locations/{locationId}.
func (h *Handler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, locID := vars["id"], vars["locationId"]

	if err := h.locations.Delete(r.Context(), userID, locID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Location not found")
			return
		}
		h.logError(r, "delete location failed", err)
		writeMessage(w, http.StatusInternalServerError, "Failed to delete location")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Location deleted"})
}
