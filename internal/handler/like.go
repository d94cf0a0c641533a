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

type LikeHandler struct {
	postService *service.PostService
}

func NewLikeHandler(postService *service.PostService) *LikeHandler {
	return &LikeHandler{postService: postService}
}

// Like handles POST /likes
// Records a like. A duplicate like answers 409 so optimistic clients
// can reconcile instead of double counting.
func (h *LikeHandler) Like(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.LikeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.PostID == "" {
		httputil.WriteBadRequest(w, "postId is required")
		return
	}

	like, err := h.postService.Like(r.Context(), req.PostID, userID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrAlreadyLiked):
			httputil.WriteConflict(w, "Already liked this post")
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		default:
			log.Printf("[ERROR] Like handler: user=%s post=%s err=%v", userID, req.PostID, err)
			httputil.WriteInternalError(w, "Failed to like post")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"like":    like,
	})
}

// Unlike handles DELETE /likes?postId=
// Removes a like. Succeeds even when no like existed; the caller
// already has the state it asked for.
func (h *LikeHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	postID := r.URL.Query().Get("postId")
	if postID == "" {
		httputil.WriteBadRequest(w, "postId is required")
		return
	}

	if err := h.postService.Unlike(r.Context(), postID, userID); err != nil {
		log.Printf("[ERROR] Unlike handler: user=%s post=%s err=%v", userID, postID, err)
		httputil.WriteInternalError(w, "Failed to unlike post")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
