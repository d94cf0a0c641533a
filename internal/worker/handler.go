package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jyej0a/mysns/internal/cache"
	"github.com/jyej0a/mysns/internal/queue"
)

// Handler applies feed events to the recent-posts index.
type Handler struct {
	index cache.RecentIndex
}

// NewHandler creates an event handler.
func NewHandler(index cache.RecentIndex) *Handler {
	return &Handler{index: index}
}

// HandleEvent routes an event by type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.FeedEvent) error {
	startTime := time.Now()
	var err error

	switch event.Type {
	case queue.EventPostCreated:
		err = h.handlePostCreated(ctx, event)
	case queue.EventPostDeleted:
		err = h.handlePostDeleted(ctx, event)
	default:
		log.Printf("[Worker] Unknown event type: %s", event.Type)
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	if err != nil {
		log.Printf("[Worker] HandleEvent FAILED: type=%s duration=%v err=%v",
			event.Type, time.Since(startTime), err)
		return err
	}

	log.Printf("[Worker] HandleEvent OK: type=%s duration=%v", event.Type, time.Since(startTime))
	return nil
}

// handlePostCreated inserts the post into the index. Scoring by the
// post's own creation time keeps the index ordering identical to the
// database ordering even when events arrive late.
func (h *Handler) handlePostCreated(ctx context.Context, event queue.FeedEvent) error {
	log.Printf("[Worker] PostCreated: post=%s author=%s", event.PostID, event.AuthorID)

	if err := h.index.Add(ctx, event.PostID, event.Timestamp); err != nil {
		return fmt.Errorf("index post: %w", err)
	}

	return nil
}

// handlePostDeleted evicts the post from the index.
func (h *Handler) handlePostDeleted(ctx context.Context, event queue.FeedEvent) error {
	log.Printf("[Worker] PostDeleted: post=%s author=%s", event.PostID, event.AuthorID)

	if err := h.index.Remove(ctx, event.PostID); err != nil {
		return fmt.Errorf("evict post: %w", err)
	}

	return nil
}
