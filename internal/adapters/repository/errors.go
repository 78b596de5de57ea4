package repository

import "errors"

var (
	ErrNotFound      = errors.New("partnership not found")
	ErrAlreadyExists = errors.New("partnership already exists")
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrLimitExceeded = errors.New("monthly limit exceeded")
)
