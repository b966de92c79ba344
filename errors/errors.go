package errors

import "fmt"

var (
	// Connection gate taxonomy. All three are terminal for the attempt:
	// the connection is closed with a reason string and no partial state
	// is retained. There is no retry policy anywhere in the core.
	ErrMalformedToken = fmt.Errorf("malformed token")
	ErrAuthentication = fmt.Errorf("authentication error")
	ErrInvalidRoom    = fmt.Errorf("invalid interchat provided")

	// Accounts service.
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity rules")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")

	ErrWorkerPanic = fmt.Errorf("worker panic")
)
