package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/jyej0a/mysns/internal/httputil"
	"github.com/jyej0a/mysns/internal/model"
	"github.com/jyej0a/mysns/internal/service"
	"github.com/jyej0a/mysns/internal/transport/http/middleware"
)

type AuthHandler struct {
	userService *service.UserService
}

func NewAuthHandler(userService *service.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// Sync handles POST /auth/sync
// Upserts the local user row for the authenticated token subject. The
// client calls this once after sign-in with the identity provider.
func (h *AuthHandler) Sync(w http.ResponseWriter, r *http.Request) {
	externalID, ok := middleware.GetExternalIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.SyncUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	user, err := h.userService.Sync(r.Context(), externalID, req)
	if err != nil {
		if errors.Is(err, model.ErrNameRequired) {
			httputil.WriteBadRequest(w, "Name is required")
			return
		}
		log.Printf("[ERROR] Sync handler: err=%v", err)
		httputil.WriteInternalError(w, "Failed to sync user")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// Me handles GET /me
// Returns the authenticated user's own row.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	externalID, ok := middleware.GetExternalIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	user, err := h.userService.GetByExternalID(r.Context(), externalID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[ERROR] Me handler: err=%v", err)
		httputil.WriteInternalError(w, "Failed to get user")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}
