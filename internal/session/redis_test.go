package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lecturequiz/internal/models"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, ttl), mr
}

func TestRedisStoreSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, time.Hour)

	st, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, st.HasQuiz())
	assert.False(t, mr.Exists(redisKey("s1")))

	st, err = store.Update(ctx, "s1", func(st *State) error {
		st.SetQuiz(quiz(3))
		_, err := st.RecordAnswer(0, "B) dois")
		return err
	})
	require.NoError(t, err)
	quizID := st.QuizID
	assert.Equal(t, time.Hour, mr.TTL(redisKey("s1")))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, quizID, loaded.QuizID)
	assert.Len(t, loaded.Questions, 3)
	assert.Equal(t, models.Score{Answered: 1, Correct: 1, Total: 3}, loaded.Score())

	require.NoError(t, store.Delete(ctx, "s1"))
	assert.False(t, mr.Exists(redisKey("s1")))

	st, err = store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, st.HasQuiz())
}

func TestRedisStoreFailedUpdateWritesNothing(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, time.Hour)

	_, err := store.Update(ctx, "fresh", func(st *State) error {
		st.SetQuiz(quiz(2))
		return ErrNoQuiz
	})
	assert.ErrorIs(t, err, ErrNoQuiz)
	assert.False(t, mr.Exists(redisKey("fresh")))

	_, err = store.Update(ctx, "s1", func(st *State) error {
		st.SetQuiz(quiz(2))
		return nil
	})
	require.NoError(t, err)
	before, err := mr.Get(redisKey("s1"))
	require.NoError(t, err)

	_, err = store.Update(ctx, "s1", func(st *State) error {
		if _, err := st.RecordAnswer(0, "B) dois"); err != nil {
			return err
		}
		_, err := st.RecordAnswer(7, "B) dois")
		return err
	})
	assert.ErrorIs(t, err, ErrQuestionIndex)

	after, err := mr.Get(redisKey("s1"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRedisStoreRetriesOnConflict(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, time.Hour)
	other := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer other.Close()

	_, err := store.Update(ctx, "s1", func(st *State) error {
		st.SetQuiz(quiz(2))
		return nil
	})
	require.NoError(t, err)

	calls := 0
	st, err := store.Update(ctx, "s1", func(st *State) error {
		calls++
		if calls == 1 {
			// a concurrent writer rewrites the watched key
			data, err := other.Get(ctx, redisKey("s1")).Bytes()
			require.NoError(t, err)
			require.NoError(t, other.Set(ctx, redisKey("s1"), data, time.Hour).Err())
		}
		_, err := st.RecordAnswer(1, "B) dois")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, st.Score().Correct)

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.Score{Answered: 1, Correct: 1, Total: 2}, loaded.Score())
}

func TestRedisStoreGivesUpAfterRepeatedConflicts(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, time.Hour)
	other := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer other.Close()

	calls := 0
	_, err := store.Update(ctx, "s1", func(st *State) error {
		calls++
		return other.Set(ctx, redisKey("s1"), "{}", 0).Err()
	})
	assert.True(t, errors.Is(err, errTooManyConflicts))
	assert.Equal(t, redisMaxAttempts, calls)
}

func TestRedisStoreTTL(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t, time.Minute)

	_, err := store.Update(ctx, "s1", func(st *State) error {
		st.SetQuiz(quiz(1))
		return nil
	})
	require.NoError(t, err)

	mr.FastForward(40 * time.Second)
	_, err = store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, mr.TTL(redisKey("s1")))

	mr.FastForward(2 * time.Minute)
	st, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, st.HasQuiz())
}

func TestRedisStoreCorruptValue(t *testing.T) {
	store, mr := newRedisStore(t, time.Hour)
	require.NoError(t, mr.Set(redisKey("s1"), "not json"))

	_, err := store.Load(context.Background(), "s1")
	assert.Error(t, err)

	_, err = store.Update(context.Background(), "s1", func(*State) error { return nil })
	assert.Error(t, err)
}
