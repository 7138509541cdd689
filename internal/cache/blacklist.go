package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	// blacklistKey holds the cached active blacklist word set.
	blacklistKey = "blacklist:words"
	// blacklistTTL bounds staleness if an invalidation is missed.
	blacklistTTL = 1 * time.Hour
)

// ErrCacheMiss indicates the requested entry is not cached.
var ErrCacheMiss = errors.New("cache miss")

// GetBlacklistWords retrieves the cached blacklist word set.
// Returns ErrCacheMiss if not cached.
func (c *Cache) GetBlacklistWords(ctx context.Context) ([]string, error) {
	data, err := c.client.Get(ctx, blacklistKey).Bytes()
	if err != nil {
		return nil, ErrCacheMiss
	}

	var words []string
	if err := json.Unmarshal(data, &words); err != nil {
		return nil, fmt.Errorf("failed to decode cached blacklist: %w", err)
	}
	return words, nil
}

// SetBlacklistWords caches the active blacklist word set.
func (c *Cache) SetBlacklistWords(ctx context.Context, words []string) error {
	data, err := json.Marshal(words)
	if err != nil {
		return fmt.Errorf("failed to encode blacklist: %w", err)
	}
	if err := c.client.Set(ctx, blacklistKey, data, blacklistTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache blacklist: %w", err)
	}
	return nil
}

// InvalidateBlacklist drops the cached word set. Called after a
// blacklist request is approved so the next submission sees the new word.
func (c *Cache) InvalidateBlacklist(ctx context.Context) error {
	if err := c.client.Del(ctx, blacklistKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate blacklist cache: %w", err)
	}
	return nil
}
