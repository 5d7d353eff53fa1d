package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix    = "user:%s"
	ThoughtKeyPrefix = "thought:%s"
)

const (
	UserTTL    = 5 * time.Minute
	ThoughtTTL = 10 * time.Minute
)

func UserKey(userID string) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func ThoughtKey(thoughtID string) string {
	return fmt.Sprintf(ThoughtKeyPrefix, thoughtID)
}

func (c *Cache) InvalidateUser(ctx context.Context, userIDs ...string) {
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, UserKey(id))
	}
	c.Invalidate(ctx, keys...)
}

func (c *Cache) InvalidateThought(ctx context.Context, thoughtID string) {
	c.Invalidate(ctx, ThoughtKey(thoughtID))
}

// Purge removes every user and thought entry. Keys are found with SCAN so
// the server is never blocked.
func (c *Cache) Purge(ctx context.Context) error {
	if c.Client() == nil {
		return nil
	}
	for _, pattern := range []string{"user:*", "thought:*"} {
		iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
	}
	return nil
}
