package oauth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	stateKeyPrefix = "blog:oauth:state:"
	stateTTL       = 10 * time.Minute
)

var (
	ErrInvalidState       = errors.New("invalid or expired state")
	ErrStateStoreDisabled = errors.New("oauth state store unavailable")
)

// StateStore 在 redis 中保存 OAuth state 与登录后的跳转地址
type StateStore struct {
	rdb *redis.Client
}

func NewStateStore(rdb *redis.Client) *StateStore {
	return &StateStore{rdb: rdb}
}

// GenerateState 生成一次性 state，10 分钟内有效
func (s *StateStore) GenerateState(ctx context.Context, redirectURI string) (string, error) {
	if s == nil || s.rdb == nil {
		return "", ErrStateStoreDisabled
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random state: %w", err)
	}
	state := hex.EncodeToString(buf)

	if err := s.rdb.Set(ctx, stateKeyPrefix+state, redirectURI, stateTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store state: %w", err)
	}

	return state, nil
}

// ValidateState 校验并消费 state，返回保存的跳转地址
func (s *StateStore) ValidateState(ctx context.Context, state string) (string, error) {
	if s == nil || s.rdb == nil {
		return "", ErrStateStoreDisabled
	}
	if state == "" {
		return "", fmt.Errorf("empty state parameter: %w", ErrInvalidState)
	}

	key := stateKeyPrefix + state

	var redirectURI string
	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Result()
		if err == redis.Nil {
			return ErrInvalidState
		}
		if err != nil {
			return fmt.Errorf("failed to get state: %w", err)
		}
		redirectURI = val

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		return err
	}, key)
	if err != nil {
		return "", err
	}

	return redirectURI, nil
}
