// Package user defines the signed-in user as reported by the identity provider
package user

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrMissingEmail = errors.New("identity has no email address")
	ErrInvalidToken = errors.New("access token is empty")
)

// User represents a signed-in person. It is never persisted; it exists for
// the lifetime of a session token.
type User struct {
	email    string
	name     string
	picture  string
	signedIn time.Time
}

// NewUser validates and builds a user from provider userinfo
func NewUser(email, name, picture string, signedIn time.Time) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, ErrMissingEmail
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = email
	}

	return &User{
		email:    email,
		name:     name,
		picture:  strings.TrimSpace(picture),
		signedIn: signedIn,
	}, nil
}

// Email returns the user's email address
func (u *User) Email() string { return u.email }

// Name returns the display name
func (u *User) Name() string { return u.name }

// Picture returns the avatar URL, possibly empty
func (u *User) Picture() string { return u.picture }

// SignedInAt returns when the session was created
func (u *User) SignedInAt() time.Time { return u.signedIn }

// Info is the wire shape of a user
type Info struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

// Info returns the serializable view of the user
func (u *User) Info() Info {
	return Info{Email: u.email, Name: u.name, Picture: u.picture}
}
