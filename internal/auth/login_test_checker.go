package auth

import "context"

// LoginTestChecker is an in-memory Checker, token -> username.
type LoginTestChecker struct {
	LoggedSessions map[string]string
}

func NewLoginTestChecker() *LoginTestChecker {
	return &LoginTestChecker{
		LoggedSessions: map[string]string{},
	}
}

func (c *LoginTestChecker) IsLogged(_ context.Context, token string) (string, bool, error) {
	username, ok := c.LoggedSessions[token]
	return username, ok, nil
}
