package services

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrForbidden          = errors.New("forbidden")
	ErrCannotAddSelf      = errors.New("cannot add yourself as a friend")
	ErrFriendCodeNotFound = errors.New("no user with that friend code")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAvatarTooLarge     = errors.New("avatar exceeds 5MB")
	ErrFriendCodeTaken    = errors.New("friend code already in use")
)
