package auth

import "errors"

var (
	// ErrInvalidCredentials covers every login rejection. It never says
	// which field was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrDuplicateEmail is returned by signup when the email is taken.
	ErrDuplicateEmail = errors.New("email already in use")
	// ErrProvider is any other identity-provider failure.
	ErrProvider = errors.New("identity provider error")
	// ErrUnauthenticated is returned when an operation needs a session.
	ErrUnauthenticated = errors.New("not authenticated")
)

// Signed session payload errors.
var (
	ErrBadSig     = errors.New("invalid signature")
	ErrBadPayload = errors.New("bad payload")
)
