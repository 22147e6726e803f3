package accounts

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/2beens/expfit/pkg"

	"golang.org/x/crypto/bcrypt"
)

const (
	DigestSHA256 = "sha256"
	DigestBcrypt = "bcrypt"
)

// Digester turns a password into the one-way digest kept in the store.
type Digester interface {
	Digest(password string) (string, error)
	Matches(password, digest string) bool
}

// NewDigester returns the digester for kind; empty kind means sha256.
func NewDigester(kind string) (Digester, error) {
	switch strings.ToLower(kind) {
	case "", DigestSHA256:
		return SHA256Digester{}, nil
	case DigestBcrypt:
		return BcryptDigester{Cost: bcrypt.DefaultCost}, nil
	default:
		return nil, fmt.Errorf("unknown password digest: %s", kind)
	}
}

// SHA256Digester produces lowercase hex SHA-256, the format existing data files use.
type SHA256Digester struct{}

func (SHA256Digester) Digest(password string) (string, error) {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}

func (d SHA256Digester) Matches(password, digest string) bool {
	computed, _ := d.Digest(password)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}

type BcryptDigester struct {
	Cost int
}

func (d BcryptDigester) Digest(password string) (string, error) {
	return pkg.HashPassword(password, d.Cost)
}

func (d BcryptDigester) Matches(password, digest string) bool {
	return pkg.CheckPasswordHash(password, digest)
}
