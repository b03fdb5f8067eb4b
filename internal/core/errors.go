// Package core holds the domain model of the household ledger and the
// daily-balance accumulation algorithm.
package core

import "errors"

var (
	// ErrNotFound marks a lookup for a record that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable marks a store operation that kept failing after
	// retries. Callers map it to a 503.
	ErrUnavailable = errors.New("store unavailable")

	// ErrInsufficientFunds rejects a withdrawal that would take a bank
	// account below zero.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrValidation is wrapped by field-level validation failures that
	// have no dedicated sentinel.
	ErrValidation = errors.New("validation failed")
)
