package fandom

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	ErrNotFound         = errors.New("fandom not found")
	ErrInvalidSeed      = errors.New("invalid seed")
	ErrInvalidRegex     = errors.New("invalid recognition regex")
	ErrDuplicateID      = errors.New("duplicate fandom id")
	ErrUnknownReference = errors.New("unknown fandom reference")
	ErrMaxDepth         = errors.New("parenthesis nesting too deep")
	ErrInvariant        = errors.New("registry invariant violated")
	ErrEmptyName        = errors.New("empty fandom name")
)

// Error provides context for fandom-related errors.
type Error struct {
	Op   string // Operation that failed (e.g., "load seed")
	Name string // Fandom name or id if applicable
	Err  error  // Underlying error
}

func (e *Error) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s '%s': %v", e.Op, e.Name, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
