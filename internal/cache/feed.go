package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// RecentIndexKey is the sorted set holding the newest post ids,
	// scored by creation timestamp. The feed is global, so one key
	// serves every viewer.
	RecentIndexKey = "feed:recent"

	// RecentIndexCap bounds the index. Pages past the cap fall back
	// to the database.
	RecentIndexCap = 500

	// RecentIndexTTL expires the index when nobody posts or reads for
	// a week; the next read warms it again.
	RecentIndexTTL = 7 * 24 * time.Hour
)

// PostScore pairs a post id with its creation timestamp score.
type PostScore struct {
	PostID    string
	Timestamp int64 // Unix timestamp
}

// RecentIndex is the cached index of the newest posts. Implementations
// must keep ids ordered newest first by score so that rank windows map
// directly onto offset pagination.
type RecentIndex interface {
	// Add inserts a post, trims the index to its cap and refreshes the TTL.
	Add(ctx context.Context, postID string, timestamp int64) error

	// Remove deletes a post from the index. Removing an absent id is fine.
	Remove(ctx context.Context, postID string) error

	// Window returns post ids for the rank range [offset, offset+limit),
	// newest first.
	Window(ctx context.Context, offset, limit int) ([]string, error)

	// Warm bulk-inserts posts, used when the index is empty or expired.
	Warm(ctx context.Context, posts []PostScore) error

	// Size returns the number of ids in the index.
	Size(ctx context.Context) (int64, error)

	// Exists reports whether the index key is present at all.
	Exists(ctx context.Context) (bool, error)
}

// RedisRecentIndex implements RecentIndex on a Redis sorted set.
type RedisRecentIndex struct {
	client *redis.Client
}

// NewRecentIndex creates a RecentIndex backed by Redis.
func NewRecentIndex(client *redis.Client) RecentIndex {
	return &RedisRecentIndex{client: client}
}

// Add inserts a post using a pipeline: ZADD + ZREMRANGEBYRANK to trim
// to the cap + EXPIRE to refresh the TTL.
func (c *RedisRecentIndex) Add(ctx context.Context, postID string, timestamp int64) error {
	startTime := time.Now()

	pipe := c.client.Pipeline()

	pipe.ZAdd(ctx, RecentIndexKey, redis.Z{
		Score:  float64(timestamp),
		Member: postID,
	})

	// Rank 0 is the oldest score; keep only the newest RecentIndexCap.
	pipe.ZRemRangeByRank(ctx, RecentIndexKey, 0, int64(-RecentIndexCap-1))

	pipe.Expire(ctx, RecentIndexKey, RecentIndexTTL)

	_, err := pipe.Exec(ctx)
	if err != nil {
		log.Printf("[RecentIndex] Add FAILED: post=%s err=%v", postID, err)
		return fmt.Errorf("add post to index: %w", err)
	}

	log.Printf("[RecentIndex] Add OK: post=%s timestamp=%d duration=%v",
		postID, timestamp, time.Since(startTime))
	return nil
}

// Remove deletes a post from the index.
func (c *RedisRecentIndex) Remove(ctx context.Context, postID string) error {
	removed, err := c.client.ZRem(ctx, RecentIndexKey, postID).Result()
	if err != nil {
		log.Printf("[RecentIndex] Remove FAILED: post=%s err=%v", postID, err)
		return fmt.Errorf("remove post from index: %w", err)
	}

	log.Printf("[RecentIndex] Remove OK: post=%s removed=%d", postID, removed)
	return nil
}

// Window returns the ids at ranks [offset, offset+limit), newest first.
// ZREVRANGE rank windows line up exactly with offset pagination because
// the set is scored by creation time.
func (c *RedisRecentIndex) Window(ctx context.Context, offset, limit int) ([]string, error) {
	startTime := time.Now()

	ids, err := c.client.ZRevRange(ctx, RecentIndexKey, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		log.Printf("[RecentIndex] Window FAILED: offset=%d limit=%d err=%v", offset, limit, err)
		return nil, fmt.Errorf("read index window: %w", err)
	}

	// Refresh TTL on access
	c.client.Expire(ctx, RecentIndexKey, RecentIndexTTL)

	log.Printf("[RecentIndex] Window OK: offset=%d limit=%d returned=%d duration=%v",
		offset, limit, len(ids), time.Since(startTime))
	return ids, nil
}

// Warm bulk-inserts posts using a single pipelined ZADD.
func (c *RedisRecentIndex) Warm(ctx context.Context, posts []PostScore) error {
	if len(posts) == 0 {
		log.Printf("[RecentIndex] Warm: posts=0 (nothing to warm)")
		return nil
	}

	startTime := time.Now()

	members := make([]redis.Z, len(posts))
	for i, p := range posts {
		members[i] = redis.Z{
			Score:  float64(p.Timestamp),
			Member: p.PostID,
		}
	}

	pipe := c.client.Pipeline()
	pipe.ZAdd(ctx, RecentIndexKey, members...)
	pipe.ZRemRangeByRank(ctx, RecentIndexKey, 0, int64(-RecentIndexCap-1))
	pipe.Expire(ctx, RecentIndexKey, RecentIndexTTL)

	_, err := pipe.Exec(ctx)
	if err != nil {
		log.Printf("[RecentIndex] Warm FAILED: posts=%d err=%v", len(posts), err)
		return fmt.Errorf("warm index: %w", err)
	}

	log.Printf("[RecentIndex] Warm OK: posts=%d duration=%v", len(posts), time.Since(startTime))
	return nil
}

// Size returns the number of ids in the index.
func (c *RedisRecentIndex) Size(ctx context.Context) (int64, error) {
	size, err := c.client.ZCard(ctx, RecentIndexKey).Result()
	if err != nil {
		log.Printf("[RecentIndex] Size FAILED: err=%v", err)
		return 0, fmt.Errorf("get index size: %w", err)
	}
	return size, nil
}

// Exists reports whether the index key is present. A missing key means
// the index expired or was never warmed; the feed service warms it from
// the database when this returns false.
func (c *RedisRecentIndex) Exists(ctx context.Context) (bool, error) {
	exists, err := c.client.Exists(ctx, RecentIndexKey).Result()
	if err != nil {
		log.Printf("[RecentIndex] Exists FAILED: err=%v", err)
		return false, fmt.Errorf("check index exists: %w", err)
	}
	return exists > 0, nil
}
