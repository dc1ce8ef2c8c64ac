package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the operation conflicts with the current state of the
// resource (e.g. reversing an already reversed transaction, or losing a write race).
// Callers may safely retry the whole command.
var ErrConflict = errors.New("resource state conflict")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrArithmeticInvariant indicates that a ledger-wide arithmetic invariant
// (pair antisymmetry or the zero-sum property) no longer holds. This is a bug
// or data corruption and must be surfaced, never swallowed.
var ErrArithmeticInvariant = errors.New("arithmetic invariant violation")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")
