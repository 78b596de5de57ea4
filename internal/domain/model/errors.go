package model

import "errors"

// Sentinel kinds for model validation errors.
var (
	ErrInvalidLoan        = errors.New("invalid loan request")
	ErrInvalidPartnership = errors.New("invalid partnership")
)
