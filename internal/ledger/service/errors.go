package service

import (
	"net/http"

	commonerrors "github.com/avbelov/mini-ledger/backend/internal/common/errors"
)

// Every ledger failure is reported as HTTP 400 with a flat message, matching
// the wire contract of the original API.
var (
	ErrDuplicateUsername = commonerrors.NewDomainError(
		"DUPLICATE_USERNAME",
		commonerrors.CategoryConflict,
		http.StatusBadRequest,
		"Username already exists.",
	)

	ErrInvalidCredentials = commonerrors.NewDomainError(
		"INVALID_CREDENTIALS",
		commonerrors.CategoryUnauthorized,
		http.StatusBadRequest,
		"Invalid credentials.",
	)

	ErrNotAuthenticated = commonerrors.NewDomainError(
		"NOT_AUTHENTICATED",
		commonerrors.CategoryUnauthorized,
		http.StatusBadRequest,
		"User not logged in.",
	)

	ErrAdminRequired = commonerrors.NewDomainError(
		"ADMIN_REQUIRED",
		commonerrors.CategoryUnauthorized,
		http.StatusBadRequest,
		"Admin privileges required.",
	)

	ErrRecipientNotFound = commonerrors.NewDomainError(
		"RECIPIENT_NOT_FOUND",
		commonerrors.CategoryNotFound,
		http.StatusBadRequest,
		"Recipient not found.",
	)

	ErrUserNotFound = commonerrors.NewDomainError(
		"USER_NOT_FOUND",
		commonerrors.CategoryNotFound,
		http.StatusBadRequest,
		"User not found.",
	)

	ErrInsufficientFunds = commonerrors.NewDomainError(
		"INSUFFICIENT_FUNDS",
		commonerrors.CategoryConflict,
		http.StatusBadRequest,
		"Insufficient balance.",
	)

	ErrSelfTransfer = commonerrors.NewDomainError(
		"SELF_TRANSFER",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"Cannot transfer to yourself.",
	)
)
