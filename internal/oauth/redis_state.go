package oauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStateStore keeps state tokens in Redis so that any instance behind a
// load balancer can complete a flow another instance started. GETDEL makes
// the lookup and the removal one atomic step.
type RedisStateStore struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisStateStore(rdb redis.Cmdable, ttl time.Duration, logger *slog.Logger) *RedisStateStore {
	return &RedisStateStore{rdb: rdb, ttl: ttl, logger: logger}
}

func (s *RedisStateStore) Issue(ctx context.Context) (StateToken, error) {
	for i := 0; i < issueAttempts; i++ {
		value, err := newStateValue()
		if err != nil {
			return StateToken{}, err
		}
		token := StateToken{Value: value, CreatedAt: time.Now()}

		ok, err := s.rdb.SetNX(ctx, oauthStateKey(value), strconv.FormatInt(token.CreatedAt.Unix(), 10), s.ttl).Result()
		if err != nil {
			return StateToken{}, fmt.Errorf("storing state: %w", err)
		}
		if ok {
			return token, nil
		}
	}
	return StateToken{}, fmt.Errorf("generating state: no unique value after %d attempts", issueAttempts)
}

func (s *RedisStateStore) Validate(ctx context.Context, value string) bool {
	if value == "" {
		return false
	}
	_, err := s.rdb.GetDel(ctx, oauthStateKey(value)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Error("oauth state lookup failed", "error", err)
		}
		return false
	}
	return true
}

func oauthStateKey(state string) string {
	return "oauth_state:" + state
}
