package queue

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Publisher publishes events to a stream.
type Publisher interface {
	// Publish adds an event to the stream and returns the message ID
	// assigned by Redis.
	Publish(ctx context.Context, stream string, event FeedEvent) (messageID string, err error)
}

// RedisPublisher implements Publisher using Redis Streams.
type RedisPublisher struct {
	client *redis.Client
}

// NewPublisher creates a Publisher backed by Redis Streams.
func NewPublisher(client *redis.Client) Publisher {
	return &RedisPublisher{client: client}
}

// Publish adds an event to the stream using XADD with an auto-generated
// message ID.
func (p *RedisPublisher) Publish(ctx context.Context, stream string, event FeedEvent) (string, error) {
	startTime := time.Now()

	values, err := event.ToMap()
	if err != nil {
		log.Printf("[Publisher] Publish FAILED: stream=%s type=%s err=%v", stream, event.Type, err)
		return "", fmt.Errorf("serialize event: %w", err)
	}

	messageID, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: values,
	}).Result()
	if err != nil {
		log.Printf("[Publisher] Publish FAILED: stream=%s type=%s err=%v", stream, event.Type, err)
		return "", fmt.Errorf("xadd to stream: %w", err)
	}

	log.Printf("[Publisher] Publish OK: stream=%s type=%s msgID=%s post=%s author=%s duration=%v",
		stream, event.Type, messageID, event.PostID, event.AuthorID, time.Since(startTime))

	return messageID, nil
}

// PublishPostCreated is a convenience wrapper for post created events.
func (p *RedisPublisher) PublishPostCreated(ctx context.Context, postID, authorID string, createdAt time.Time) (string, error) {
	return p.Publish(ctx, StreamFeed, NewPostCreatedEvent(postID, authorID, createdAt))
}

// PublishPostDeleted is a convenience wrapper for post deleted events.
func (p *RedisPublisher) PublishPostDeleted(ctx context.Context, postID, authorID string) (string, error) {
	return p.Publish(ctx, StreamFeed, NewPostDeletedEvent(postID, authorID))
}
