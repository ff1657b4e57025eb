package session

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mkortel/goblog/internal/utils"
)

// RedisStore keeps sessions in Redis. Each session is a string key
// `sess:<id>` holding the user id with a TTL, plus membership in a
// per-user set `user_sessions:<uid>` so every session of a user can be
// revoked in one call. The index set carries the longest possible TTL;
// stale members are skipped at revoke time because their string keys
// have already expired.
type RedisStore struct {
	RDB         *redis.Client
	TTL         time.Duration // regular session lifetime
	RememberTTL time.Duration // lifetime with the remember flag
}

func NewRedisStore(rdb *redis.Client, ttl, rememberTTL time.Duration) *RedisStore {
	return &RedisStore{RDB: rdb, TTL: ttl, RememberTTL: rememberTTL}
}

func sessKey(id string) string { return "sess:" + id }

func userKey(userID uint64) string {
	return "user_sessions:" + strconv.FormatUint(userID, 10)
}

func (s *RedisStore) Create(ctx context.Context, userID uint64, remember bool) (string, error) {
	id, err := utils.RandomHex(32)
	if err != nil {
		return "", err
	}
	ttl := s.TTL
	if remember {
		ttl = s.RememberTTL
	}
	pipe := s.RDB.TxPipeline()
	pipe.Set(ctx, sessKey(id), strconv.FormatUint(userID, 10), ttl)
	pipe.SAdd(ctx, userKey(userID), id)
	pipe.Expire(ctx, userKey(userID), s.RememberTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (s *RedisStore) Resolve(ctx context.Context, id string) (uint64, error) {
	v, err := s.RDB.Get(ctx, sessKey(id)).Result()
	if err == redis.Nil {
		return 0, ErrNoSession
	}
	if err != nil {
		return 0, err
	}
	userID, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, ErrNoSession
	}
	return userID, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	userID, err := s.Resolve(ctx, id)
	if err == ErrNoSession {
		return nil
	}
	if err != nil {
		return err
	}
	pipe := s.RDB.TxPipeline()
	pipe.Del(ctx, sessKey(id))
	pipe.SRem(ctx, userKey(userID), id)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) DeleteAllForUser(ctx context.Context, userID uint64) error {
	ids, err := s.RDB.SMembers(ctx, userKey(userID)).Result()
	if err != nil {
		return err
	}
	pipe := s.RDB.TxPipeline()
	for _, id := range ids {
		pipe.Del(ctx, sessKey(id))
	}
	pipe.Del(ctx, userKey(userID))
	_, err = pipe.Exec(ctx)
	return err
}
