package auth

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultTTL       = 24 * 7 * time.Hour
	sessionKeyPrefix = "exp-fitness-session||"
	tokensSetKey     = "exp-fitness-sessions"
)

var ErrInvalidSession = errors.New("invalid session value")

// session value: "<created at unix>|<username>"
func sessionValue(createdAt time.Time, username string) string {
	return strconv.FormatInt(createdAt.Unix(), 10) + "|" + username
}

func parseSessionValue(val string) (createdAt time.Time, username string, err error) {
	createdAtStr, username, found := strings.Cut(val, "|")
	if !found || username == "" {
		return time.Time{}, "", ErrInvalidSession
	}
	createdAtUnix, err := strconv.ParseInt(createdAtStr, 10, 64)
	if err != nil {
		return time.Time{}, "", ErrInvalidSession
	}
	return time.Unix(createdAtUnix, 0), username, nil
}

// TokenHeader carries the session token on authenticated requests.
const TokenHeader = "X-EXP-TOKEN"
