package schedule

import "errors"

var (
	ErrEventNotFound = errors.New("event not found")
	ErrInvalidKind   = errors.New("invalid event kind")
	ErrInvalidWindow = errors.New("event ends before it starts")
)
