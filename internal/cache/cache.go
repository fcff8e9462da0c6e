// internal/cache/cache.go
package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Invalidator drops cached presentation views after a mutation. The two view
// keys cover the settings connected-repo list and the repository page list.
type Invalidator interface {
	InvalidateUserViews(ctx context.Context, userID string) error
}

// redisCommander is the slice of the redis client the invalidator uses.
// Narrowing it keeps tests free of a real server.
type redisCommander interface {
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisInvalidator deletes per-user view keys from Redis.
type RedisInvalidator struct {
	client    redisCommander
	namespace string
	logger    *slog.Logger
}

// NewRedisInvalidator creates an invalidator over an existing Redis client.
func NewRedisInvalidator(client redis.UniversalClient, namespace string, logger *slog.Logger) *RedisInvalidator {
	if namespace == "" {
		namespace = "github-dashboard"
	}
	return &RedisInvalidator{
		client:    client,
		namespace: namespace,
		logger:    logger,
	}
}

// InvalidateUserViews drops the connected-repository and repository-page view
// caches for one user.
func (r *RedisInvalidator) InvalidateUserViews(ctx context.Context, userID string) error {
	keys := []string{
		r.key("views:connected-repos", userID),
		r.key("views:repo-pages", userID),
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate user views: %w", err)
	}
	r.logger.Debug("Invalidated view caches", "user_id", userID, "keys", keys)
	return nil
}

func (r *RedisInvalidator) key(view, userID string) string {
	return fmt.Sprintf("%s:%s:%s", r.namespace, view, userID)
}
