package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m3rciful/finbot/internal/catalog"
)

const (
	redisKeyPrefix  = "finbot:session:"
	defaultRedisTTL = 30 * 24 * time.Hour
)

// RedisStore keeps sessions as JSON values with a sliding TTL.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore wraps an initialized client; ttl <= 0 selects the default.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultRedisTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func redisKey(conversationID int64) string {
	return fmt.Sprintf("%s%d", redisKeyPrefix, conversationID)
}

// Get loads a session and restarts its TTL; a missing key yields the zero session.
func (r *RedisStore) Get(ctx context.Context, conversationID int64) (Session, error) {
	data, err := r.rdb.GetEx(ctx, redisKey(conversationID), r.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("session: redis get: %w", err)
	}
	return decodeSession(data)
}

// SetLocale updates the locale and keeps the stored currency.
func (r *RedisStore) SetLocale(ctx context.Context, conversationID int64, loc catalog.Locale) error {
	return r.update(ctx, conversationID, func(s *Session) { s.Locale = loc })
}

// SetCurrency updates the currency and keeps the stored locale.
func (r *RedisStore) SetCurrency(ctx context.Context, conversationID int64, cur Currency) error {
	return r.update(ctx, conversationID, func(s *Session) { s.Currency = cur })
}

// update performs an optimistic read-modify-write so concurrent writes to
// different fields of the same session do not drop each other.
func (r *RedisStore) update(ctx context.Context, conversationID int64, mutate func(*Session)) error {
	key := redisKey(conversationID)
	txf := func(tx *redis.Tx) error {
		s := Session{}
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			if s, err = decodeSession(data); err != nil {
				return err
			}
		}
		mutate(&s)
		encoded, err := json.Marshal(s)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, r.ttl)
			return nil
		})
		return err
	}

	var err error
	for attempt := 0; attempt < 3; attempt++ {
		err = r.rdb.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("session: redis update: %w", err)
	}
	return nil
}

func decodeSession(data []byte) (Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("session: decode: %w", err)
	}
	return s, nil
}
