package family

import "errors"

var (
	ErrFamilyNotFound    = errors.New("family not found")
	ErrCodeNotFound      = errors.New("family code not found")
	ErrInvalidCode       = errors.New("invalid family code")
	ErrAlreadyInFamily   = errors.New("already in family")
	ErrMemberNotFound    = errors.New("member not found")
	ErrNotAdmin          = errors.New("not the parent admin")
	ErrCannotRemoveAdmin = errors.New("cannot remove the parent admin")
	ErrAdminMustTransfer = errors.New("parent admin must hand off the role first")
	ErrInvalidRole       = errors.New("invalid role")
	ErrCodeTaken         = errors.New("family code already taken")
)
