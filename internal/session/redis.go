package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"lecturequiz/internal/models"
)

const (
	redisKeyPrefix   = "lecturequiz:session:"
	redisMaxAttempts = 5
)

var errTooManyConflicts = errors.New("session update kept conflicting")

// RedisStore keeps states as JSON with a TTL, so a session's quiz disappears
// with the session. Updates use WATCH + MULTI and retry on conflict.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(id string) string {
	return redisKeyPrefix + id
}

func (r *RedisStore) Load(ctx context.Context, id string) (*State, error) {
	data, err := r.client.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return newState(time.Now()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session %s: %w", id, err)
	}
	st, err := decodeState(data)
	if err != nil {
		return nil, err
	}
	if r.ttl > 0 {
		if err := r.client.Expire(ctx, redisKey(id), r.ttl).Err(); err != nil {
			return nil, fmt.Errorf("redis refresh session %s: %w", id, err)
		}
	}
	return st, nil
}

func (r *RedisStore) Update(ctx context.Context, id string, fn func(*State) error) (*State, error) {
	key := redisKey(id)
	var result *State
	var fnErr error

	txf := func(tx *redis.Tx) error {
		st := newState(time.Now())
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			if st, err = decodeState(data); err != nil {
				return err
			}
		}

		if fnErr = fn(st); fnErr != nil {
			return fnErr
		}
		encoded, err := json.Marshal(st)
		if err != nil {
			return fmt.Errorf("encode session state: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, r.ttl)
			return nil
		})
		if err == nil {
			result = st
		}
		return err
	}

	for attempt := 0; attempt < redisMaxAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		switch {
		case err == nil:
			return result, nil
		case fnErr != nil:
			return nil, fnErr
		case errors.Is(err, redis.TxFailedErr):
			continue
		default:
			return nil, fmt.Errorf("redis update session %s: %w", id, err)
		}
	}
	return nil, fmt.Errorf("session %s: %w", id, errTooManyConflicts)
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, redisKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete session %s: %w", id, err)
	}
	return nil
}

func decodeState(data []byte) (*State, error) {
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode session state: %w", err)
	}
	if st.Answers == nil {
		st.Answers = map[int]models.AnswerRecord{}
	}
	return &st, nil
}
