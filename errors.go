package learnpath

import "errors"

var (
	// ErrInvalidRequest is returned when prompt parameters are missing or out of range
	ErrInvalidRequest = errors.New("invalid generation request")
	// ErrMalformedResponse is returned when a completion cannot be coerced to the JSON shape
	ErrMalformedResponse = errors.New("malformed model response")
	// ErrUpstream wraps failures of the completion service
	ErrUpstream = errors.New("completion service failure")
	// ErrNotFound is returned when no stored quiz, course or user matches a lookup
	ErrNotFound = errors.New("not found")
	// ErrDuplicateUser is returned when signing up with a taken username or email
	ErrDuplicateUser = errors.New("username or email already registered")
	// ErrInvalidCredentials is returned when the email is unknown or the password does not match
	ErrInvalidCredentials = errors.New("invalid email or password")
)
