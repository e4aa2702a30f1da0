// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on a booking they are not a member
// of, while ErrConflict signals that an operation cannot proceed due to
// conflicting state (e.g. an overlapping booking on the same vehicle).
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own or travel on. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a create or update cannot be performed
// because of conflicting state, such as booking a vehicle whose date
// range is already taken. Handlers should translate this into an HTTP
// 409 response.
var ErrConflict = errors.New("conflict")

// ErrUsernameExists is returned when creating a user whose username
// (employee code) is already taken.
var ErrUsernameExists = errors.New("username already exists")
