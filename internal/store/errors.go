package store

import (
	"errors"
	"fmt"
)

// CorruptStoreError is returned when the backing file exists but cannot be
// parsed as a store document.
type CorruptStoreError struct {
	Path string
	Err  error
}

func (e *CorruptStoreError) Error() string {
	return fmt.Sprintf("corrupt store file [%s]: %s", e.Path, e.Err)
}

func (e *CorruptStoreError) Unwrap() error {
	return e.Err
}

// ErrUnknownUser is returned by per-user operations for usernames that were never registered.
var ErrUnknownUser = errors.New("unknown user")
