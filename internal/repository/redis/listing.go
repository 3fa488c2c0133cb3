package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Rrens/workspace-insights/internal/domain"
)

const (
	listingCachePrefix = "listing:"
	defaultListingTTL  = 5 * time.Minute
)

// ListingCache caches source listings per binding
type ListingCache struct {
	client *Client
	ttl    time.Duration
}

// NewListingCache creates a new listing cache
func NewListingCache(client *Client, ttl time.Duration) *ListingCache {
	if ttl <= 0 {
		ttl = defaultListingTTL
	}
	return &ListingCache{client: client, ttl: ttl}
}

func listingKey(bindingID uuid.UUID) string {
	return listingCachePrefix + bindingID.String()
}

// Get returns the cached listing, or nil on a miss
func (c *ListingCache) Get(ctx context.Context, bindingID uuid.UUID) ([]domain.SourceItem, error) {
	data, err := c.client.rdb.Get(ctx, listingKey(bindingID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read listing cache: %w", err)
	}

	var items []domain.SourceItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal listing: %w", err)
	}

	return items, nil
}

// Set caches a listing for a binding
func (c *ListingCache) Set(ctx context.Context, bindingID uuid.UUID, items []domain.SourceItem) error {
	if items == nil {
		items = []domain.SourceItem{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal listing: %w", err)
	}

	return c.client.rdb.Set(ctx, listingKey(bindingID), data, c.ttl).Err()
}

// Invalidate removes a binding's cached listing
func (c *ListingCache) Invalidate(ctx context.Context, bindingID uuid.UUID) error {
	return c.client.rdb.Del(ctx, listingKey(bindingID)).Err()
}

// FlushAll removes every cached listing
func (c *ListingCache) FlushAll(ctx context.Context) (int64, error) {
	pattern := listingCachePrefix + "*"
	var cursor uint64
	var deleted int64

	for {
		keys, nextCursor, err := c.client.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to scan keys: %w", err)
		}

		if len(keys) > 0 {
			count, err := c.client.rdb.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("failed to delete keys: %w", err)
			}
			deleted += count
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return deleted, nil
}
