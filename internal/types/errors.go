package types

import "errors"

var (
	ErrUnexpectedStatus = errors.New("unexpected status code")
	ErrMissingColumn    = errors.New("missing column")
	ErrUnknownTable     = errors.New("unknown binding table")
	ErrNoWindows        = errors.New("no city windows configured")
)
