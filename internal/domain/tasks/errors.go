package tasks

import "errors"

var (
	ErrListNotFound = errors.New("task list not found")
	ErrTaskNotFound = errors.New("task not found")
)
