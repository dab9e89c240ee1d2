package session

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

var ErrNoSnapshot = errors.New("no session snapshot")

const snapshotTTL = 7 * 24 * time.Hour

// RedisStore persists session snapshots so an interrupted client resumes
// with its queue intact.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(addr, password string, db int) *RedisStore {
	return &RedisStore{
		rdb: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}),
	}
}

func key(tgID int64) string {
	return "session:" + strconv.FormatInt(tgID, 10)
}

func (s *RedisStore) Save(ctx context.Context, tgID int64, sess *Session) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key(tgID), b, snapshotTTL).Err()
}

func (s *RedisStore) Load(ctx context.Context, tgID int64) (*Session, error) {
	b, err := s.rdb.Get(ctx, key(tgID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSnapshot
		}
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, tgID int64) error {
	return s.rdb.Del(ctx, key(tgID)).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
