package service

import "errors"

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrConflict         = errors.New("conflict")
	ErrInvalidStatus    = errors.New("invalid status transition")
	ErrStorageDisabled  = errors.New("image storage is not configured")
	ErrMailerDisabled   = errors.New("mail delivery is not configured")
)
