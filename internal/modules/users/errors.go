package users

import "errors"

var (
	ErrNotFound            = errors.New("user not found")
	ErrAlreadyExists       = errors.New("user with this email or username already exists")
	ErrInvalidPassword     = errors.New("current password is incorrect")
	ErrSelfSubscription    = errors.New("cannot subscribe to yourself")
	ErrAlreadySubscribed   = errors.New("already subscribed")
	ErrSubscriptionMissing = errors.New("subscription not found")
	ErrUnauthenticated     = errors.New("authentication required")
)
