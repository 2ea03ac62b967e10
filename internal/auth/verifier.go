package auth

import (
	"context"
	"crypto/subtle"

	"github.com/localpros/localpros/webapp/pkg/contracts"
)

// DenyAllVerifier rejects every login. The production deployment plugs a
// real identity provider in through pkg/server; this default keeps a
// misconfigured instance fail-closed rather than open.
type DenyAllVerifier struct{}

func (DenyAllVerifier) Verify(context.Context, string, string) (string, error) {
	return "", contracts.ErrInvalidCredentials
}

// StaticVerifier is a fixed email → credential table for demo seeds and
// tests. Not for production use.
type StaticVerifier map[string]StaticCredential

// StaticCredential pairs a password with the identity it signs in as.
type StaticCredential struct {
	Password string
	Identity string
}

// Verify checks the table with constant-time password comparison.
func (v StaticVerifier) Verify(_ context.Context, email, password string) (string, error) {
	cred, ok := v[email]
	if !ok {
		return "", contracts.ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(cred.Password), []byte(password)) != 1 {
		return "", contracts.ErrInvalidCredentials
	}
	return cred.Identity, nil
}
