package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jyej0a/mysns/internal/handler"
	"github.com/jyej0a/mysns/internal/httputil"
	authmw "github.com/jyej0a/mysns/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	PostHandler    *handler.PostHandler
	LikeHandler    *handler.LikeHandler
	CommentHandler *handler.CommentHandler
	FollowHandler  *handler.FollowHandler
	JWTSecret      string
	UserResolver   authmw.UserResolver
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	optional := authmw.OptionalAuthMiddleware(cfg.JWTSecret, cfg.UserResolver)
	required := authmw.AuthMiddleware(cfg.JWTSecret, cfg.UserResolver)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	// Sync runs on a verified token before the local row exists
	r.With(authmw.VerifyTokenMiddleware(cfg.JWTSecret)).Post("/auth/sync", cfg.AuthHandler.Sync)

	// Public reads with optional authentication, so viewer-relative
	// fields (is_liked, is_following) fill in for signed-in users
	r.Group(func(r chi.Router) {
		r.Use(optional)

		r.Get("/posts", cfg.PostHandler.List)
		r.Get("/posts/{id}", cfg.PostHandler.GetByID)
		r.Get("/users/{id}", cfg.UserHandler.GetProfile)
		r.Get("/users/{id}/followers", cfg.FollowHandler.GetFollowers)
		r.Get("/users/{id}/following", cfg.FollowHandler.GetFollowing)
	})

	// Protected routes - require authentication
	r.Group(func(r chi.Router) {
		r.Use(required)

		r.Get("/me", cfg.AuthHandler.Me)

		r.Post("/posts", cfg.PostHandler.Create)
		r.Delete("/posts/{id}", cfg.PostHandler.Delete)

		r.Post("/likes", cfg.LikeHandler.Like)
		r.Delete("/likes", cfg.LikeHandler.Unlike)

		r.Post("/comments", cfg.CommentHandler.Create)
		r.Delete("/comments/{id}", cfg.CommentHandler.Delete)

		r.Post("/follows", cfg.FollowHandler.Follow)
		r.Delete("/follows", cfg.FollowHandler.Unfollow)

		r.Patch("/users/{id}", cfg.UserHandler.UpdateProfile)
		r.Post("/users/{id}/profile-image", cfg.UserHandler.UpdateProfileImage)
		r.Delete("/users/{id}/profile-image", cfg.UserHandler.RemoveProfileImage)
	})

	return r
}
