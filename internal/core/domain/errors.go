package domain

import (
	"errors"
	"fmt"
)

// Error categories. Specific errors below wrap one of these so the transport
// layer can map whole families with errors.Is.
var (
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("access forbidden")
	ErrNotFound              = errors.New("not found")
	ErrConflict              = errors.New("conflict")
	ErrInvalidInput          = errors.New("invalid input")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// Token errors.
var (
	ErrMissingToken = fmt.Errorf("%w: missing token", ErrUnauthorized)
	ErrInvalidToken = fmt.Errorf("%w: invalid token", ErrUnauthorized)
	ErrExpiredToken = fmt.Errorf("%w: token expired", ErrUnauthorized)
	ErrBadSignature = fmt.Errorf("%w: bad token signature", ErrUnauthorized)
)

// Credential errors.
var (
	ErrUserNotFound    = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrBadCredentials  = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	ErrDuplicateHandle = fmt.Errorf("%w: handle already registered", ErrConflict)
)

// Cart and checkout errors.
var (
	ErrCartNotFound       = fmt.Errorf("%w: cart not found", ErrNotFound)
	ErrItemNotFound       = fmt.Errorf("%w: item not in cart", ErrNotFound)
	ErrInvalidQuantity    = fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	ErrInvalidPrice       = fmt.Errorf("%w: unit price must not be negative", ErrInvalidInput)
	ErrEmptyCart          = errors.New("cannot checkout an empty cart")
	ErrNotificationFailed = errors.New("order notification failed")
	ErrCheckoutInProgress = fmt.Errorf("%w: checkout already in progress", ErrConflict)
	ErrCartContention     = fmt.Errorf("%w: cart was modified concurrently", ErrConflict)
)
