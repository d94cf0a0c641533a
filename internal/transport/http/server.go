package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jyej0a/mysns/internal/cache"
	"github.com/jyej0a/mysns/internal/config"
	"github.com/jyej0a/mysns/internal/database"
	"github.com/jyej0a/mysns/internal/handler"
	"github.com/jyej0a/mysns/internal/queue"
	redisclient "github.com/jyej0a/mysns/internal/redis"
	"github.com/jyej0a/mysns/internal/repository"
	"github.com/jyej0a/mysns/internal/service"
	"github.com/jyej0a/mysns/internal/worker"
)

// Run wires the whole application together and serves until interrupted.
func Run() error {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	rdb, err := redisclient.NewClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer rdb.Close()

	if err := rdb.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)

	// Infrastructure
	recentIndex := cache.NewRecentIndex(rdb.Client)
	publisher := queue.NewPublisher(rdb.Client)
	consumer := queue.NewConsumer(rdb.Client)

	// Services
	mediaService, err := service.NewMediaService(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to init media service: %w", err)
	}
	userService := service.NewUserService(userRepo, followRepo, mediaService)
	postService := service.NewPostService(postRepo, commentRepo, userRepo, mediaService, publisher)
	commentService := service.NewCommentService(commentRepo)
	followService := service.NewFollowService(followRepo)
	feedService := service.NewFeedService(recentIndex, postRepo, commentRepo)

	// Background workers keep the recent-posts index in step with the
	// posts table.
	manager := worker.NewManager(consumer, worker.NewHandler(recentIndex), worker.DefaultManagerConfig())
	if err := manager.Start(ctx); err != nil {
		return fmt.Errorf("failed to start workers: %w", err)
	}
	defer manager.Stop()

	router := NewRouter(RouterConfig{
		AuthHandler:    handler.NewAuthHandler(userService),
		UserHandler:    handler.NewUserHandler(userService),
		PostHandler:    handler.NewPostHandler(postService, feedService),
		LikeHandler:    handler.NewLikeHandler(postService),
		CommentHandler: handler.NewCommentHandler(commentService),
		FollowHandler:  handler.NewFollowHandler(followService),
		JWTSecret:      cfg.JWTSecret,
		UserResolver:   userService,
	})

	srv := &stdhttp.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on :%s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Printf("Received %v, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
