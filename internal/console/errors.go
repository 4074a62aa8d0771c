package console

import "errors"

// LoginFailedMessage is what the login form shows for any failed sign-in.
const LoginFailedMessage = "Invalid credentials or server unavailable."

var (
	// ErrInvalidCredentials is the only failure a login surfaces, whatever the cause.
	ErrInvalidCredentials = errors.New("invalid credentials or server unavailable")
	// ErrForbidden means the current identity lacks the capability locally; no call was made.
	ErrForbidden = errors.New("action not permitted for current role")
)
