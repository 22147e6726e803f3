package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/expfit/internal/store"
	"github.com/2beens/expfit/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
)

var (
	ErrAccountExists         = errors.New("username already exists")
	ErrInvalidCredential     = errors.New("invalid credential")
	ErrAuthenticationFailure = errors.New("invalid username or password")

	errPasswordMismatch = fmt.Errorf("%w: passwords do not match", ErrInvalidCredential)
	errEmptyCredential  = fmt.Errorf("%w: username and password cannot be empty", ErrInvalidCredential)
)

type Registry struct {
	store    *store.Store
	digester Digester
}

func NewRegistry(s *store.Store, digester Digester) *Registry {
	return &Registry{
		store:    s,
		digester: digester,
	}
}

// ValidateRegistration checks the sign-up form values before an account is created.
func ValidateRegistration(username, password, confirmation string) error {
	if password != confirmation {
		return errPasswordMismatch
	}
	if username == "" || password == "" {
		return errEmptyCredential
	}
	return nil
}

// Create registers a new user with empty logs and zero EXP.
func (r *Registry) Create(ctx context.Context, username, password string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "accounts.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if username == "" || password == "" {
		return errEmptyCredential
	}

	// digest outside of the store lock, bcrypt is slow
	digest, err := r.digester.Digest(password)
	if err != nil {
		return fmt.Errorf("digest password: %w", err)
	}

	if err := r.store.Update(ctx, func(doc *store.Document) error {
		if doc.HasUser(username) {
			return ErrAccountExists
		}
		doc.AddUser(username, digest)
		return nil
	}); err != nil {
		return err
	}

	log.Debugf("account [%s] created", username)

	return nil
}

// Authenticate reports whether username exists and password matches its digest.
func (r *Registry) Authenticate(ctx context.Context, username, password string) bool {
	_, span := tracing.GlobalTracer.Start(ctx, "accounts.authenticate")
	defer span.End()

	var (
		digest string
		found  bool
	)
	r.store.View(func(doc *store.Document) {
		digest, found = doc.UserAccounts[username]
	})
	if !found {
		return false
	}

	return r.digester.Matches(password, digest)
}

// Login is Authenticate as an error. Unknown user and wrong password are not told apart.
func (r *Registry) Login(ctx context.Context, username, password string) error {
	if !r.Authenticate(ctx, username, password) {
		return ErrAuthenticationFailure
	}
	return nil
}

func (r *Registry) Exists(username string) bool {
	var found bool
	r.store.View(func(doc *store.Document) {
		found = doc.HasUser(username)
	})
	return found
}

func (r *Registry) Count() int {
	var count int
	r.store.View(func(doc *store.Document) {
		count = len(doc.UserAccounts)
	})
	return count
}
