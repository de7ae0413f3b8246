package token

import "errors"

var (
	ErrExpired          = errors.New("token expired")
	ErrInvalid          = errors.New("token invalid")
	ErrSignatureInvalid = errors.New("token signature invalid")
	ErrMalformed        = errors.New("token malformed")
	ErrUnsupported      = errors.New("token unsupported")
	ErrNotFound         = errors.New("token not found")
	ErrUnauthorized     = errors.New("unauthorized")
)
