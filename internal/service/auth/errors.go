// Package auth resolves request credentials into an owner identity. The task
// core never sees credentials; it receives the authenticated owner id the
// HTTP boundary derives here.
package auth

import "errors"

// Authentication errors returned by the Authenticator.
var (
	// ErrInvalidToken is returned when a JWT fails signature or claim
	// validation.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when a JWT is past its expiry.
	ErrExpiredToken = errors.New("token expired")

	// ErrInvalidAPIKey is returned when an API key matches none of the
	// configured key hashes.
	ErrInvalidAPIKey = errors.New("invalid API key")

	// ErrNoCredentials is returned when a request carries no usable
	// credentials for any configured scheme.
	ErrNoCredentials = errors.New("no credentials provided")
)
