package model

import "errors"

// Operation errors. Callers wrap them with context and match with errors.Is.
var (
	ErrDuplicateIdentity = errors.New("username already exists")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidReference  = errors.New("invalid reference")
	ErrInUse             = errors.New("in use")
	ErrForbidden         = errors.New("forbidden")
	ErrUnauthenticated   = errors.New("invalid credentials")
	ErrBusy              = errors.New("store busy, retry")
)
