package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const threadKeyPrefix = "blog:comments:thread:"

// ThreadCache 按文章缓存已审核的评论树，redis 未启用时所有操作都是空操作
type ThreadCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewThreadCache(rdb *redis.Client, ttl time.Duration) *ThreadCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &ThreadCache{rdb: rdb, ttl: ttl}
}

func (c *ThreadCache) enabled() bool {
	return c != nil && c.rdb != nil
}

// genKey 保存文章评论树的代数，每次失效加一
func genKey(postID string) string {
	return threadKeyPrefix + postID + ":gen"
}

func threadKey(postID string, gen int64) string {
	return threadKeyPrefix + postID + ":" + strconv.FormatInt(gen, 10)
}

// Get 读取当前代的缓存，命中时解码到 dest；返回的 gen 需原样传给 Set
func (c *ThreadCache) Get(ctx context.Context, postID string, dest interface{}) (int64, bool, error) {
	if !c.enabled() {
		return 0, false, nil
	}

	gen, err := c.rdb.Get(ctx, genKey(postID)).Int64()
	if err != nil && err != redis.Nil {
		return 0, false, fmt.Errorf("failed to read thread cache generation: %w", err)
	}

	data, err := c.rdb.Get(ctx, threadKey(postID, gen)).Bytes()
	if err == redis.Nil {
		return gen, false, nil
	}
	if err != nil {
		return gen, false, fmt.Errorf("failed to read thread cache: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return gen, false, fmt.Errorf("failed to decode thread cache: %w", err)
	}
	return gen, true, nil
}

// Set 把读库结果写到 gen 对应的键，期间若已失效则写入的旧代不会再被读到
func (c *ThreadCache) Set(ctx context.Context, postID string, gen int64, value interface{}) error {
	if !c.enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode thread cache: %w", err)
	}
	return c.rdb.Set(ctx, threadKey(postID, gen), data, c.ttl).Err()
}

// Invalidate 评论变更后推进代数，旧代的键随 TTL 过期
func (c *ThreadCache) Invalidate(ctx context.Context, postID string) error {
	if !c.enabled() {
		return nil
	}
	return c.rdb.Incr(ctx, genKey(postID)).Err()
}
