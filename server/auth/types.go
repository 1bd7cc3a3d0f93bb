// Package auth protects the event API with HTTP Basic Authentication.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
)

// ErrInvalidCredentials is returned when a username or password does not match
var ErrInvalidCredentials = errors.New("invalid credentials")

// Principal represents an authenticated user
type Principal struct {
	ID string
}

// Credentials represents authentication credentials
type Credentials struct {
	Username string
	Password string
}

// Authenticator validates credentials and returns a Principal if successful
type Authenticator interface {
	Authenticate(ctx context.Context, creds Credentials) (*Principal, error)
}

// Static accepts exactly one username and password pair
type Static struct {
	Credentials
}

func (s Static) Authenticate(_ context.Context, creds Credentials) (*Principal, error) {
	userOK := subtle.ConstantTimeCompare([]byte(creds.Username), []byte(s.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(creds.Password), []byte(s.Password)) == 1
	if s.Username == "" || !userOK || !passOK {
		return nil, ErrInvalidCredentials
	}
	return &Principal{ID: s.Username}, nil
}
