package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	types "github.com/yungbote/skilltrail-backend/internal/domain"
	"github.com/yungbote/skilltrail-backend/internal/pkg/logger"
)

// ActivePathCache is a read-through cache for the active learning path of a
// user. Every plan mutation must invalidate; a nil cache disables caching.
type ActivePathCache interface {
	Get(ctx context.Context, userID uuid.UUID) (*types.LearningPath, bool, error)
	Set(ctx context.Context, userID uuid.UUID, path *types.LearningPath) error
	Invalidate(ctx context.Context, userID uuid.UUID) error
	Close() error
}

type activePathCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewActivePathCache(log *logger.Logger) (ActivePathCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	ttl := 5 * time.Minute
	if raw := strings.TrimSpace(os.Getenv("ACTIVE_PATH_CACHE_TTL")); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			ttl = parsed
		}
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &activePathCache{
		log: log.With("service", "ActivePathCache"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func cacheKey(userID uuid.UUID) string {
	return "active_path:" + userID.String()
}

func (c *activePathCache) Get(ctx context.Context, userID uuid.UUID) (*types.LearningPath, bool, error) {
	if c == nil || c.rdb == nil || userID == uuid.Nil {
		return nil, false, nil
	}
	raw, err := c.rdb.Get(ctx, cacheKey(userID)).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var path types.LearningPath
	if err := json.Unmarshal(raw, &path); err != nil {
		// Corrupt entry: drop it and fall back to the store.
		_ = c.rdb.Del(ctx, cacheKey(userID)).Err()
		return nil, false, nil
	}
	return &path, true, nil
}

func (c *activePathCache) Set(ctx context.Context, userID uuid.UUID, path *types.LearningPath) error {
	if c == nil || c.rdb == nil || userID == uuid.Nil || path == nil {
		return nil
	}
	raw, err := json.Marshal(path)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, cacheKey(userID), raw, c.ttl).Err()
}

func (c *activePathCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	if c == nil || c.rdb == nil || userID == uuid.Nil {
		return nil
	}
	return c.rdb.Del(ctx, cacheKey(userID)).Err()
}

func (c *activePathCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
