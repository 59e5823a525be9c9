package booking

import "errors"

var (
	ErrValidation         = errors.New("validation error")
	ErrLeadNotFound       = errors.New("lead not found")
	ErrMissingContact     = errors.New("lead is missing required contact fields")
	ErrSchedulingConflict = errors.New("scheduling conflict")
	ErrNotFound           = errors.New("booking not found")
)
