package auth

import "errors"

var (
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrMissingActor   = errors.New("authentication context is missing")
	ErrForbidden      = errors.New("actor is not allowed to manage payroll")
	ErrUnknownSubject = errors.New("token subject is missing")
)
