package usecase

import "errors"

var (
	ErrUnauthenticated = errors.New("not logged in")
	ErrUserNotFound    = errors.New("user not found")
	ErrMatchNotFound   = errors.New("match not found")
	ErrSelfMatch       = errors.New("cannot start a match with yourself")
	ErrForbidden       = errors.New("not a participant of this match")
	ErrInvalidInput    = errors.New("invalid input")
)
