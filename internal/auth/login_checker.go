package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type LoginChecker struct {
	ttl         time.Duration
	redisClient *redis.Client
}

func NewLoginChecker(ttl time.Duration, redisClient *redis.Client) *LoginChecker {
	return &LoginChecker{
		ttl:         ttl,
		redisClient: redisClient,
	}
}

// IsLogged resolves the token to the username of a live session.
// Unknown and expired tokens are reported as not logged, without an error.
func (lc *LoginChecker) IsLogged(ctx context.Context, token string) (string, bool, error) {
	sessionKey := sessionKeyPrefix + token
	cmd := lc.redisClient.Get(ctx, sessionKey)
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}

	createdAt, username, err := parseSessionValue(cmd.Val())
	if err != nil {
		return "", false, fmt.Errorf("session [%s]: %w", token, err)
	}

	if time.Since(createdAt) > lc.ttl {
		return "", false, nil
	}

	return username, true, nil
}
