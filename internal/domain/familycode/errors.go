package familycode

import "errors"

var (
	// ErrExhausted reports that every allowed attempt produced a collision.
	// Recoverable: the caller can re-invoke generation.
	ErrExhausted = errors.New("family code attempts exhausted")
)
