package messaging

import "errors"

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrNotAuthor       = errors.New("not the message author")
	ErrBodyTooLong     = errors.New("message body too long")
)
