package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDeadlinePassed        = errors.New("lineup deadline passed")
	ErrScheduleUnavailable   = errors.New("weekly schedule unavailable")
	ErrDataIntegrity         = errors.New("data integrity violation")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
