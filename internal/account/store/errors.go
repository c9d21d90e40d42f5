package store

import "errors"

var (
	ErrDuplicateUsername = errors.New("username already exists")
	ErrAccountNotFound   = errors.New("account not found")
	ErrSenderNotFound    = errors.New("sender account not found")
	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrSameAccount       = errors.New("sender and recipient are the same account")
)
